package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/hostexec"
	"github.com/wippyai/hostexec/call"
	"github.com/wippyai/hostexec/executor"
	"github.com/wippyai/hostexec/fault"
	"github.com/wippyai/hostexec/host"
)

func main() {
	var (
		scenarioName = flag.String("scenario", "", "Scenario to run")
		list         = flag.Bool("list", false, "List scenarios and exit")
		verbose      = flag.Bool("v", false, "Verbose scheduler logging")
		interactive  = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		executor.SetLogger(l)
		fault.SetLogger(l)
		host.SetLogger(l)
	}

	if *list {
		fmt.Println("Scenarios:")
		for _, sc := range scenarios {
			fmt.Printf("  %-10s %s\n", sc.name, sc.description)
		}
		return
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(scenarios); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *scenarioName == "" {
		fmt.Fprintln(os.Stderr, "Usage: simulate -scenario <name> [-v]")
		fmt.Fprintln(os.Stderr, "       simulate -list")
		fmt.Fprintln(os.Stderr, "       simulate -i  (interactive mode)")
		os.Exit(1)
	}

	sc := findScenario(*scenarioName)
	if sc == nil {
		fmt.Fprintf(os.Stderr, "Error: unknown scenario %q (try -list)\n", *scenarioName)
		os.Exit(1)
	}

	if err := run(*sc); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// step is one host action in a scripted scenario.
type step struct {
	label string
	run   func() error
}

// scenario builds a fresh simulator plus the ordered host actions to drive
// it with.
type scenario struct {
	name        string
	description string
	build       func() (*host.Simulator, []step)
}

func findScenario(name string) *scenario {
	for i := range scenarios {
		if scenarios[i].name == name {
			return &scenarios[i]
		}
	}
	return nil
}

func run(sc scenario) error {
	sim, steps := sc.build()

	fmt.Printf("Scenario: %s\n%s\n", sc.name, sc.description)

	seen := 0
	for i, st := range steps {
		fmt.Printf("\n[%d/%d] %s\n", i+1, len(steps), st.label)
		err := st.run()

		for _, e := range sim.Events()[seen:] {
			fmt.Printf("  %s\n", e)
		}
		seen = len(sim.Events())

		if err != nil {
			var te *host.TrapError
			if errors.As(err, &te) {
				fmt.Printf("  => trapped: %v\n", te.Value)
			} else {
				return err
			}
		}
	}

	snap := sim.Executor().Snapshot()
	fmt.Printf("\nFinal state: %s\n", formatSnapshot(snap))
	fmt.Printf("Outstanding calls: %d\n", sim.PendingCalls())
	if traps := sim.Traps(); len(traps) > 0 {
		fmt.Printf("Reported traps:\n")
		for _, msg := range traps {
			fmt.Printf("  %s\n", msg)
		}
	}
	return nil
}

func formatSnapshot(s executor.Snapshot) string {
	return fmt.Sprintf("methods=%d tasks=%d migratory=%d recovering=%v",
		s.Methods, s.Tasks, s.MigratoryReady, s.Recovering)
}

// fetcher is a task that issues one call and logs the outcome as a host
// event when it resolves.
type fetcher struct {
	sim     *host.Simulator
	dest    string
	payload string
	fut     *call.Future
}

func (f *fetcher) Poll(w hostexec.Waker) hostexec.Poll {
	if f.fut == nil {
		f.fut = f.sim.CallRemote(f.dest, []byte(f.payload))
	}
	if f.fut.Poll(w) == hostexec.Pending {
		return hostexec.Pending
	}
	res := f.fut.Result()
	if res.Rejected() {
		f.sim.Note("%s rejected (%d): %s", f.dest, res.RejectCode, res.RejectMessage)
	} else {
		f.sim.Note("%s replied: %s", f.dest, res.Reply)
	}
	return hostexec.Ready
}

func (f *fetcher) Drop() {
	if f.fut != nil {
		f.fut.Drop()
	}
	if f.sim.Executor().IsRecoveringFromTrap() {
		f.sim.Note("%s canceled by trap recovery", f.dest)
	}
}

// exploder traps as soon as its call resolves, exercising the abort path.
type exploder struct {
	fetcher
}

func (e *exploder) Poll(w hostexec.Waker) hostexec.Poll {
	if e.fetcher.Poll(w) == hostexec.Pending {
		return hostexec.Pending
	}
	panic("continuation observed inconsistent state")
}

var scenarios = []scenario{
	{
		name:        "pingpong",
		description: "One update method awaits a single echo call.",
		build: func() (*host.Simulator, []step) {
			sim := host.NewSimulator()
			sim.RegisterService("echo", func(p []byte) ([]byte, error) {
				return append([]byte("pong:"), p...), nil
			})
			sim.RegisterUpdate("ping", func(sim *host.Simulator) {
				sim.Executor().SpawnProtected(&fetcher{sim: sim, dest: "echo", payload: "ping"})
			})
			return sim, []step{
				{label: "invoke ping", run: func() error { return sim.Invoke("ping") }},
				{label: "deliver the echo response", run: sim.DeliverNext},
			}
		},
	},
	{
		name:        "fanout",
		description: "One update fans out to three services; responses settle in order.",
		build: func() (*host.Simulator, []step) {
			sim := host.NewSimulator()
			for _, name := range []string{"alpha", "beta", "gamma"} {
				name := name
				sim.RegisterService(name, func(p []byte) ([]byte, error) {
					return []byte(strings.ToUpper(name)), nil
				})
			}
			sim.RegisterUpdate("fanout", func(sim *host.Simulator) {
				for _, dest := range []string{"alpha", "beta", "gamma"} {
					sim.Executor().SpawnProtected(&fetcher{sim: sim, dest: dest, payload: "hi"})
				}
			})
			return sim, []step{
				{label: "invoke fanout", run: func() error { return sim.Invoke("fanout") }},
				{label: "settle all responses", run: sim.Settle},
			}
		},
	},
	{
		name:        "trap",
		description: "A continuation traps on resume; recovery cancels the method's tasks.",
		build: func() (*host.Simulator, []step) {
			sim := host.NewSimulator()
			sim.RegisterService("ledger", func(p []byte) ([]byte, error) {
				return []byte("balance=42"), nil
			})
			sim.RegisterUpdate("transfer", func(sim *host.Simulator) {
				bad := &exploder{}
				bad.sim, bad.dest, bad.payload = sim, "ledger", "debit"
				sim.Executor().SpawnProtected(bad)
				sim.Executor().SpawnProtected(&fetcher{sim: sim, dest: "ledger", payload: "credit"})
			})
			return sim, []step{
				{label: "invoke transfer", run: func() error { return sim.Invoke("transfer") }},
				{label: "deliver the first response (continuation traps)", run: sim.DeliverNext},
				{label: "deliver the second response (dropped, task canceled)", run: sim.DeliverNext},
			}
		},
	},
	{
		name:        "abort",
		description: "The host aborts a call before delivery; the task is canceled under recovery.",
		build: func() (*host.Simulator, []step) {
			sim := host.NewSimulator()
			sim.RegisterService("echo", func(p []byte) ([]byte, error) { return p, nil })
			sim.RegisterUpdate("ping", func(sim *host.Simulator) {
				sim.Executor().SpawnProtected(&fetcher{sim: sim, dest: "echo", payload: "ping"})
			})
			return sim, []step{
				{label: "invoke ping", run: func() error { return sim.Invoke("ping") }},
				{label: "abort the call", run: sim.AbortNext},
			}
		},
	},
}
