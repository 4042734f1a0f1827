// Package call provides the future half of an inter-host call.
//
// A call is split into a Future, awaited by the task that issued the call,
// and a Completer, fired by host glue when the reply or reject arrives.
// Exactly one of Reply or Reject fires per outstanding call, unless the host
// aborts the method first, in which case the call is never completed and the
// awaiting task is canceled through trap recovery instead.
//
// The usual shape inside a task:
//
//	fut, completer := call.New(ex)
//	guard := ex.ExtendCurrentMethodContext()
//	// hand completer and guard to the transport issuing the call
//	...
//	if fut.Poll(w) == hostexec.Pending {
//	    return hostexec.Pending
//	}
//	res := fut.Result()
//
// And on the host side, when the response arrives:
//
//	ex.EnterCallback(guard, func() {
//	    completer.Reply(payload)
//	})
//
// A call future is spent once its result has been taken; awaiting it again
// is a documented fatal fault, as is awaiting a future whose owning task was
// canceled by a trap. These are the only user-reachable fatal conditions in
// the library.
package call
