package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go-ml.dev/pkg/synthtrain/checkpoint"
	"go-ml.dev/pkg/synthtrain/config"
	"go-ml.dev/pkg/synthtrain/dataset"
	"go-ml.dev/pkg/synthtrain/model"
	"go-ml.dev/pkg/synthtrain/trainer"
	"go-ml.dev/pkg/synthtrain/tracker"
	"golang.org/x/xerrors"
	"k8s.io/klog/v2"
)

type options struct {
	configFile string
	preset     string
	set        []string
	sqlite     string
	resume     string
}

func main() {
	klog.InitFlags(nil)
	if err := rootCmd().Execute(); err != nil {
		klog.ErrorS(err, "synthtrain failed")
		klog.Flush()
		os.Exit(1)
	}
	klog.Flush()
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "synthtrain",
		Short:        "Train classifiers on synthetic data with known ground truth features",
		SilenceUsage: true,
	}
	root.PersistentFlags().AddGoFlagSet(flag.CommandLine)
	root.AddCommand(trainCmd(), presetsCmd(), datasetsCmd())
	return root
}

func trainCmd() *cobra.Command {
	o := options{}
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Run the training loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			return train(o)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.configFile, "config", "c", "", "configuration file (yaml, json or toml)")
	f.StringVarP(&o.preset, "preset", "p", "", "experiment preset applied over configuration")
	f.StringArrayVar(&o.set, "set", nil, "override numeric parameter, key=value")
	f.StringVar(&o.sqlite, "sqlite", "", "sqlite database for checkpoints and scalars")
	f.StringVar(&o.resume, "resume", "", "milestone to resume from")
	return cmd
}

func presetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List experiment presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, n := range config.Presets() {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
		},
	}
}

func datasetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "datasets",
		Short: "List synthetic datasets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, n := range dataset.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
		},
	}
}

func parseSet(set []string) (config.Params, error) {
	p := config.Params{}
	for _, s := range set {
		kv := strings.SplitN(s, "=", 2)
		if len(kv) != 2 {
			return nil, xerrors.Errorf("bad --set %q: %w", s, model.ErrInvalidConfiguration)
		}
		v, err := strconv.ParseFloat(kv[1], 64)
		if err != nil {
			return nil, xerrors.Errorf("bad --set %q: %v: %w", s, err.Error(), model.ErrInvalidConfiguration)
		}
		p[strings.TrimSpace(kv[0])] = v
	}
	return p, nil
}

func configure(o options) (cfg config.Config, err error) {
	cfg = config.Default()
	if o.configFile != "" {
		if cfg, err = config.Load(o.configFile); err != nil {
			return
		}
	}
	if o.preset != "" {
		p, err := config.Preset(o.preset)
		if err != nil {
			return cfg, err
		}
		if cfg, err = p.Apply(cfg); err != nil {
			return cfg, err
		}
	}
	p, err := parseSet(o.set)
	if err != nil {
		return
	}
	return p.Apply(cfg)
}

func train(o options) error {
	cfg, err := configure(o)
	if err != nil {
		return err
	}

	var tr tracker.Tracker = tracker.Klog{Verbosity: 1}
	var st checkpoint.Store
	if o.sqlite != "" {
		q, err := tracker.OpenSQLite(o.sqlite)
		if err != nil {
			return err
		}
		defer q.Close()
		tr = tracker.Multi(tr, q)
		cs, err := checkpoint.OpenSQLite(o.sqlite)
		if err != nil {
			return err
		}
		defer cs.Close()
		st = cs
	}

	m := model.NewMLP(cfg.FeatureDim, cfg.HiddenDim, len(cfg.ClassNames), cfg.Seed)
	opt := model.NewAdam(m.Parameters(), cfg.LearningRate, cfg.AdamBetas)
	t, err := trainer.New(m, opt, cfg, tr, st)
	if err != nil {
		return err
	}
	if o.resume != "" {
		ms, err := checkpoint.ParseMilestone(o.resume)
		if err != nil {
			return err
		}
		if err = t.Resume(ms); err != nil {
			return err
		}
	}
	report, err := t.Train()
	if err != nil {
		return err
	}
	if best, ok := report.Best(); ok {
		klog.InfoS("best evaluation", "step", best.Step, "milestone", best.Milestone, "acc_over_all", best.Accuracy.OverAll)
	}
	return nil
}
