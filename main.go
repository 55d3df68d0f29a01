// Command onpolicy trains on-policy algorithms, plays trained
// algorithms, and plots training summaries.
//
// Usage:
//
//	onpolicy train -config configs/gridworld.json -dir runs/gridworld/train
//	onpolicy play -config configs/gridworld.json -dir runs/gridworld/train
//	onpolicy report -dir runs/gridworld/train -out report.html
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/logrusorgru/aurora"
	"github.com/samuelfneumann/onpolicy/agent"
	_ "github.com/samuelfneumann/onpolicy/agent/linear/discrete/actorcritic"
	"github.com/samuelfneumann/onpolicy/driver"
	"github.com/samuelfneumann/onpolicy/experiment"
	"github.com/samuelfneumann/onpolicy/summary"
)

const usage = `usage: onpolicy <command> [flags]

commands:
	train	train an algorithm
	play	play a trained algorithm
	report	plot the summaries of a run as HTML
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "train":
		err = train(os.Args[2:])
	case "play":
		err = play(os.Args[2:])
	case "report":
		err = report(os.Args[2:])
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		log.New(os.Stderr, "", log.LstdFlags).Println(
			aurora.Red("error:").Bold(), err)
		os.Exit(1)
	}
}

// runFlags are the flags shared by train and play
type runFlags struct {
	*flag.FlagSet
	config   *string
	dir      *string
	seed     *int64
	noColour *bool
}

func newRunFlags(name string) runFlags {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	return runFlags{
		FlagSet:  fs,
		config:   fs.String("config", "", "JSON run configuration file"),
		dir:      fs.String("dir", "", "train directory"),
		seed:     fs.Int64("seed", -1, "random seed overriding the configuration"),
		noColour: fs.Bool("no-colour", false, "disable coloured logs"),
	}
}

// load loads the run configuration named by the flags
func (f runFlags) load() (experiment.RunConfig, error) {
	if *f.config == "" || *f.dir == "" {
		return experiment.RunConfig{}, fmt.Errorf("%v: -config and -dir are "+
			"required", f.Name())
	}

	r, err := experiment.LoadRunConfig(*f.config)
	if err != nil {
		return r, err
	}
	if *f.seed >= 0 {
		r.Experiment.RandomSeed = uint64(*f.seed)
	}

	au := aurora.NewAurora(!*f.noColour)
	prefix := fmt.Sprintf("%v ", au.Cyan("["+f.Name()+"]").Bold())
	r.Experiment.Logger = log.New(os.Stderr, prefix, log.LstdFlags)
	return r, nil
}

// flagSet returns whether the flag name was given on the command line
func flagSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		set = set || f.Name == name
	})
	return set
}

type trainFlags struct {
	runFlags
	progress   *bool
	iterations *int
	compiled   *bool
}

func newTrainFlags() trainFlags {
	f := newRunFlags("train")
	return trainFlags{
		runFlags: f,
		progress: f.Bool("progress", false, "display a progress bar"),
		iterations: f.Int("iterations", -1, "number of training "+
			"iterations overriding the configuration"),
		compiled: f.Bool("compiled", true, "compile the algorithm's "+
			"computations rather than interpreting them"),
	}
}

// apply overrides c with the flags given on the command line. Flags
// left unset keep the value of the run configuration.
func (f trainFlags) apply(c *experiment.Config) {
	if flagSet(f.FlagSet, "progress") {
		c.Progress = *f.progress
	}
	if flagSet(f.FlagSet, "compiled") {
		c.UseCompiledRun = *f.compiled
	}
	if *f.iterations >= 0 {
		c.NumIterations = *f.iterations
	}
}

func train(args []string) error {
	f := newTrainFlags()
	f.Parse(args)

	r, err := f.load()
	if err != nil {
		return err
	}
	f.apply(&r.Experiment)

	e, evalEnv, alg, err := r.Create()
	if err != nil {
		return err
	}
	if c, ok := alg.(agent.Closer); ok {
		defer c.Close()
	}

	r.Experiment.Logger.Printf("training %v on %v (seed %d, %v, %v)",
		r.Agent.Type, r.Environment.Environment, r.Experiment.RandomSeed,
		driver.ModeOf(r.Experiment.UseCompiledRun), *f.dir)
	return experiment.Train(*f.dir, e, alg, evalEnv, r.Experiment)
}

type playFlags struct {
	runFlags
	checkpoint *string
	steps      *int
	sample     *bool
	frames     *string
}

func newPlayFlags() playFlags {
	f := newRunFlags("play")
	return playFlags{
		runFlags: f,
		checkpoint: f.String("checkpoint", "", "checkpoint to play, the "+
			"latest if empty"),
		steps: f.Int("steps", -1, "number of steps to play overriding the "+
			"configuration"),
		sample: f.Bool("sample", false, "sample actions rather than acting "+
			"greedily"),
		frames: f.String("frames", "", "directory to save rendered frames to"),
	}
}

// apply overrides c with the flags given on the command line
func (f playFlags) apply(c *experiment.Config) {
	if flagSet(f.FlagSet, "checkpoint") {
		c.CheckpointName = *f.checkpoint
	}
	if flagSet(f.FlagSet, "frames") {
		c.RenderDir = *f.frames
	}
	if flagSet(f.FlagSet, "sample") {
		c.GreedyPredict = !*f.sample
	}
	if *f.steps >= 0 {
		c.NumSteps = *f.steps
	}
}

func play(args []string) error {
	f := newPlayFlags()
	f.Parse(args)

	r, err := f.load()
	if err != nil {
		return err
	}
	f.apply(&r.Experiment)

	r.Evaluate = false
	e, _, alg, err := r.Create()
	if err != nil {
		return err
	}
	if c, ok := alg.(agent.Closer); ok {
		defer c.Close()
	}
	return experiment.Play(*f.dir, e, alg, r.Experiment)
}

func report(args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	dir := fs.String("dir", "", "summary directory")
	out := fs.String("out", "report.html", "HTML file to write")
	title := fs.String("title", "", "page title, the directory if empty")
	fs.Parse(args)

	if *dir == "" {
		return fmt.Errorf("report: -dir is required")
	}
	if *title == "" {
		*title = *dir
	}

	events, err := summary.ReadEvents(*dir)
	if err != nil {
		return err
	}

	file, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("report: %v", err)
	}
	if err := summary.Plot(events, *title, file); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("report: %v", err)
	}

	log.Printf("wrote %d events to %v", len(events), aurora.Green(*out))
	return nil
}
