// This tool prints the format, chunk layout and metadata of a wav file.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/cwbudde/wave"
	"github.com/cwbudde/wave/internal/cli"
	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

const (
	toolName           = "wavinfo"
	missingPathMessage = "You must pass the path of the file to inspect"
)

var errMissingPath = errors.New("missing path argument")

func main() {
	err := run(os.Args[1:], os.Stdout)
	if err == nil {
		return
	}

	if errors.Is(err, errMissingPath) {
		fmt.Fprintln(os.Stderr, missingPathMessage)
		os.Exit(1)
	}

	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func run(args []string, out io.Writer) error {
	cmd := newRootCmd(afero.NewOsFs(), out, os.Stderr)
	// cobra falls back to os.Args for a nil slice
	cmd.SetArgs(append([]string{}, args...))

	return cmd.Execute()
}

func newRootCmd(fs afero.Fs, out, stderr io.Writer) *cobra.Command {
	var logOpts cli.LogOptions

	cmd := &cobra.Command{
		Use:           toolName + " PATH",
		Short:         "Print the format, chunks and metadata of a wav file",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return errMissingPath
			}

			logger, closer, err := cli.SetupLogging(toolName, logOpts, stderr)
			if err != nil {
				return err
			}
			defer closer.Close()

			return report(fs, args[0], logger, cmd.OutOrStdout())
		},
	}

	cli.AddLogFlags(cmd, &logOpts)
	cmd.SetOut(out)
	cmd.SetErr(stderr)

	return cmd
}

func sniff(fs afero.Fs, path string) (*mimetype.MIME, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return mimetype.DetectReader(f)
}

func report(fs afero.Fs, path string, logger *slog.Logger, out io.Writer) error {
	mtype, err := sniff(fs, path)
	if err != nil {
		return err
	}

	logger.Debug("detected content type", "path", path, "mime", mtype.String())

	c, err := wave.ParseFile(path, wave.WithFs(fs), wave.WithLogger(logger))
	if err != nil {
		return err
	}
	defer c.Close()

	f := c.Format()
	begin, end := c.DataRange()

	fmt.Fprintf(out, "File: %s\n", path)
	fmt.Fprintf(out, "MIME: %s\n", mtype.String())
	fmt.Fprintf(out, "Format: 0x%04X (extensible: %t)\n", c.FormatCode(), c.IsExtensible())
	fmt.Fprintf(out, "Channels: %d\n", c.Channels())
	fmt.Fprintf(out, "Sample rate: %d Hz\n", c.SampleRate())
	fmt.Fprintf(out, "Byte rate: %d\n", f.ByteRate)
	fmt.Fprintf(out, "Block size: %d\n", c.BlockSize())
	fmt.Fprintf(out, "Bit depth: %d\n", c.BitDepth())
	fmt.Fprintf(out, "Blocks: %d\n", c.NumBlocks())
	fmt.Fprintf(out, "Duration: %s\n", c.Duration())
	fmt.Fprintf(out, "Data: %d bytes at [%d, %d), last chunk: %t\n", c.DataSize(), begin, end, c.IsLastChunk())

	chunks := c.Chunks()
	fmt.Fprintf(out, "Chunks: %d\n", len(chunks))

	for _, chunk := range chunks {
		where := "after data"
		if chunk.BeforeData {
			where = "before data"
		}

		state := ""
		if !chunk.Complete {
			state = ", incomplete"
		}

		fmt.Fprintf(out, "\t[%d] %q %d bytes, %s%s\n", chunk.Order, chunk.ID.String(), chunk.Size, where, state)
	}

	meta, err := c.Metadata()
	if err != nil {
		return err
	}

	if meta == nil {
		fmt.Fprintln(out, "No metadata present")
		return nil
	}

	printMetadata(out, meta)

	return nil
}

func printMetadata(out io.Writer, m *wave.Metadata) {
	fields := []struct {
		name  string
		value string
	}{
		{"Artist", m.Artist},
		{"Title", m.Title},
		{"Comments", m.Comments},
		{"Copyright", m.Copyright},
		{"CreationDate", m.CreationDate},
		{"Engineer", m.Engineer},
		{"Technician", m.Technician},
		{"Genre", m.Genre},
		{"Keywords", m.Keywords},
		{"Medium", m.Medium},
		{"Product", m.Product},
		{"Subject", m.Subject},
		{"Software", m.Software},
		{"Source", m.Source},
		{"Location", m.Location},
		{"TrackNbr", m.TrackNbr},
	}

	for _, field := range fields {
		if field.value != "" {
			fmt.Fprintf(out, "%s: %s\n", field.name, field.value)
		}
	}

	if m.HasFact {
		fmt.Fprintf(out, "Fact sample count: %d\n", m.SampleCount)
	}

	if b := m.Broadcast; b != nil {
		fmt.Fprintf(out, "Broadcast: %q by %q at %s %s\n", b.Description, b.Originator, b.OriginationDate, b.OriginationTime)
	}

	if s := m.Sampler; s != nil {
		fmt.Fprintf(out, "Sampler: unity note %d, %d loops\n", s.MIDIUnityNote, len(s.Loops))

		for i, l := range s.Loops {
			fmt.Fprintf(out, "\tloop [%d]: type %d, %d to %d, play count %d\n", i, l.Type, l.Start, l.End, l.PlayCount)
		}
	}
}
