// This tool converts a wav file into an aiff file with the same samples and
// stores it next to the source.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/cwbudde/wave"
	"github.com/cwbudde/wave/internal/cli"
	"github.com/go-audio/aiff"
	"github.com/go-audio/audio"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

const (
	toolName = "wavtoaiff"

	// frames per encoder write
	framesPerWrite = 4096
)

var errMissingPath = errors.New("you must set the --path flag")

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
		logOpts    cli.LogOptions
		sourcePath string
	)

	cmd := &cobra.Command{
		Use:           toolName,
		Short:         "Convert a PCM wav file to aiff",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if sourcePath == "" {
				return errMissingPath
			}

			logger, closer, err := cli.SetupLogging(toolName, logOpts, stderr)
			if err != nil {
				return err
			}
			defer closer.Close()

			outPath, err := convert(fs, expandHome(sourcePath), logger)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wav file converted to %s\n", outPath)

			return nil
		},
	}

	cmd.Flags().StringVar(&sourcePath, "path", "", "The path to the wav file to convert to aiff")
	cli.AddLogFlags(cmd, &logOpts)
	cmd.SetOut(out)
	cmd.SetErr(stderr)

	return cmd
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(xdg.Home, path[2:])
	}

	return path
}

func aiffPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".aif"
}

func convert(fs afero.Fs, path string, logger *slog.Logger) (string, error) {
	c, err := wave.ParseFile(path, wave.WithFs(fs), wave.WithLogger(logger))
	if err != nil {
		return "", err
	}
	defer c.Close()

	if err := c.DataRewind(); err != nil {
		return "", err
	}

	outPath := aiffPath(path)

	outFile, err := fs.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", outPath, err)
	}
	defer outFile.Close()

	encoder := aiff.NewEncoder(outFile, c.SampleRate(), c.BitDepth(), c.Channels())

	frames, err := copyBlocks(c, encoder)
	if err != nil {
		return "", err
	}

	if err := encoder.Close(); err != nil {
		return "", fmt.Errorf("finish %s: %w", outPath, err)
	}

	logger.Info("converted wav to aiff", "source", path, "output", outPath, "frames", frames)

	return outPath, nil
}

type bufferWriter interface {
	Write(buf *audio.IntBuffer) error
}

// copyBlocks streams every block of c into w, framesPerWrite frames at a
// time. A trailing partial block is dropped.
func copyBlocks(c *wave.Container, w bufferWriter) (int, error) {
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: c.Channels(), SampleRate: c.SampleRate()},
		Data:           make([]int, 0, framesPerWrite*c.Channels()),
		SourceBitDepth: c.BitDepth(),
	}

	// wav stores 8 bit samples offset binary, aiff stores them signed
	unsigned8 := c.BitDepth() == 8

	flush := func() error {
		if len(buf.Data) == 0 {
			return nil
		}

		if err := w.Write(buf); err != nil {
			return fmt.Errorf("write aiff samples: %w", err)
		}

		buf.Data = buf.Data[:0]

		return nil
	}

	frames := 0
	for !c.DataEnd() {
		if unsigned8 {
			block, err := c.NextBlockUnsigned()
			if errors.Is(err, wave.ErrMissingData) {
				break
			}
			if err != nil {
				return frames, err
			}

			for _, v := range block {
				buf.Data = append(buf.Data, int(v)-128)
			}
		} else {
			block, err := c.NextBlock()
			if errors.Is(err, wave.ErrMissingData) {
				break
			}
			if err != nil {
				return frames, err
			}

			for _, v := range block {
				buf.Data = append(buf.Data, int(v))
			}
		}

		frames++
		if frames%framesPerWrite == 0 {
			if err := flush(); err != nil {
				return frames, err
			}
		}
	}

	return frames, flush()
}
