package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/tstromberg/framer/pkg/framer"
)

const defaultConfig = "config/config.yaml"

var (
	configPath string
	inDir      string
	outDir     string
	workers    int
	recursive  bool
	watchFlag  bool
	backend    string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	root := &cobra.Command{
		Use:          "framer [files...]",
		Short:        "Add a camera metadata caption strip below photos",
		SilenceUsage: true,
		RunE:         run,
	}

	fs := flag.NewFlagSet("klog", flag.ExitOnError)
	klog.InitFlags(fs)
	root.PersistentFlags().AddGoFlagSet(fs)

	f := root.Flags()
	f.StringVar(&configPath, "config", defaultConfig, "Location of settings file")
	f.StringVar(&inDir, "in", "", "Location of input directory (overrides image.input_folder)")
	f.StringVar(&outDir, "out", "", "Location of output directory (overrides image.output_folder)")
	f.IntVar(&workers, "workers", 0, "number of images to process at once (overrides basic.thread_nums)")
	f.BoolVar(&recursive, "recursive", false, "descend into subdirectories of the input directory")
	f.BoolVar(&watchFlag, "watch", false, "watch the input directory and frame new images")
	f.StringVar(&backend, "backend", "", "metadata backend: exiftool or goexif")

	if err := root.ExecuteContext(ctx); err != nil {
		klog.Exitf("framer failed: %v", err)
	}
}

func config(cmd *cobra.Command) (*framer.Config, error) {
	path := configPath
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) && !cmd.Flags().Changed("config") {
		klog.Infof("%s not found, using defaults", path)
		path = ""
	}

	c, err := framer.Load(path)
	if err != nil {
		return nil, err
	}

	if inDir != "" {
		c.Image.InputFolder = inDir
	}
	if outDir != "" {
		c.Image.OutputFolder = outDir
	}
	if workers > 0 {
		c.Basic.UseMultithreading = true
		c.Basic.ThreadNums = workers
	}
	if cmd.Flags().Changed("recursive") {
		c.Image.Recursive = recursive
	}
	if backend != "" {
		c.Metadata.Backend = backend
	}

	return c, c.Validate()
}

func run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	c, err := config(cmd)
	if err != nil {
		return err
	}

	ex, err := framer.NewExtractor(c)
	if err != nil {
		return err
	}
	defer func() {
		if err := ex.Close(); err != nil {
			klog.Errorf("close extractor: %v", err)
		}
	}()

	var st *framer.Stats
	if len(args) > 0 {
		st, err = framer.ProcessFiles(ctx, c, ex, args)
	} else {
		st, err = framer.Run(ctx, c, ex)
	}
	if err != nil {
		return err
	}

	if watchFlag {
		return framer.Watch(ctx, c, ex)
	}

	if st.Failed > 0 {
		klog.Warningf("%d images failed", st.Failed)
	}
	return nil
}
