// This tool writes a mono sine wave to a wav file.
package main

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/cwbudde/wave"
	"github.com/cwbudde/wave/internal/cli"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

const toolName = "gen-sine"

type sineOptions struct {
	output     string
	frequency  float64
	length     float64
	sampleRate int
	bitDepth   int
	amplitude  float64
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	cmd := newRootCmd(afero.NewOsFs(), out, os.Stderr)
	// cobra falls back to os.Args for a nil slice
	cmd.SetArgs(append([]string{}, args...))

	return cmd.Execute()
}

func newRootCmd(fs afero.Fs, out, stderr io.Writer) *cobra.Command {
	var (
		logOpts cli.LogOptions
		opts    sineOptions
	)

	cmd := &cobra.Command{
		Use:           toolName,
		Short:         "Generate a sine wave wav file",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, closer, err := cli.SetupLogging(toolName, logOpts, stderr)
			if err != nil {
				return err
			}
			defer closer.Close()

			logger.Info("generating sine", "length_sec", opts.length, "frequency_hz", opts.frequency)

			c, err := generate(opts, wave.WithFs(fs), wave.WithLogger(logger))
			if err != nil {
				return err
			}

			if err := c.WriteFileTo(opts.output); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d blocks to %s\n", c.NumBlocks(), opts.output)

			return nil
		},
	}

	cmd.Flags().StringVar(&opts.output, "output", "output.wav", "filename to write to")
	cmd.Flags().Float64Var(&opts.frequency, "frequency", 440, "frequency in hertz to generate")
	cmd.Flags().Float64Var(&opts.length, "length", 5, "length in seconds of output file")
	cmd.Flags().IntVar(&opts.sampleRate, "rate", 48000, "sample rate in hertz")
	cmd.Flags().IntVar(&opts.bitDepth, "bits", 16, "bits per sample (16, 24 or 32)")
	cmd.Flags().Float64Var(&opts.amplitude, "amplitude", 1, "peak level between 0 and 1")
	cli.AddLogFlags(cmd, &logOpts)
	cmd.SetOut(out)
	cmd.SetErr(stderr)

	return cmd
}

// generate renders the sine into a time domain grid and copies it into an
// in-memory container.
func generate(opts sineOptions, wopts ...wave.Option) (*wave.Container, error) {
	switch opts.bitDepth {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("bit depth %d: only signed 16, 24 and 32 bit output is supported", opts.bitDepth)
	}

	if opts.length < 0 || opts.amplitude < 0 || opts.amplitude > 1 {
		return nil, fmt.Errorf("length %g or amplitude %g out of range: %w", opts.length, opts.amplitude, wave.ErrRange)
	}

	if opts.sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate %d: %w", opts.sampleRate, wave.ErrDataInvalid)
	}

	rate := float64(opts.sampleRate)
	blocks := int(math.Round(opts.length * rate))

	g, err := wave.NewGrid(wave.TimeDomain, 1, 1/rate)
	if err != nil {
		return nil, err
	}

	peak := opts.amplitude * float64(int64(1)<<(opts.bitDepth-1)-1)
	for i := range blocks {
		v := peak * math.Sin(float64(i)/rate*opts.frequency*2*math.Pi)
		if err := g.Set(i, 0, complex(v, 0)); err != nil {
			return nil, err
		}
	}

	c, err := wave.NewFromPCM(1, opts.sampleRate, opts.bitDepth, make([]byte, blocks*opts.bitDepth/8), wopts...)
	if err != nil {
		return nil, err
	}

	if err := wave.Copy(c, g); err != nil {
		return nil, err
	}

	return c, nil
}
