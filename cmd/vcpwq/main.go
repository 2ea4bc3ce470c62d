// Command vcpwq is a minimal batch encoder/decoder for the VC-PWQ
// codec: it reads whitespace/comma-delimited sample files from a
// folder, encodes or decodes every one, and writes the results to
// another folder. It is a convenience wrapper around the vcpwq
// library, not the codec's primary interface.
package main

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vc-pwq/vcpwq"
	"github.com/vc-pwq/vcpwq/internal/bitio"
	"github.com/vc-pwq/vcpwq/internal/framing"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		inputDir      string
		compressedDir string
		outputDir     string
		blockLength   int
		bitBudget     int
		sampleRate    int
		maxChannels   int
		multichannel  bool
	)

	cmd := &cobra.Command{
		Use:   "vcpwq",
		Short: "Encode and decode vibrotactile waveforms with the VC-PWQ codec",
		Long: "vcpwq batch-encodes sample files from an input folder into a compressed\n" +
			"folder, and/or batch-decodes a compressed folder into reconstructed\n" +
			"sample files in an output folder, depending on which folders are given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := &vcpwq.Options{
				BlockLength: blockLength,
				SampleRate:  sampleRate,
				MaxChannels: maxChannels,
				Logger:      log.New(os.Stderr, "vcpwq: ", 0),
			}

			if inputDir != "" {
				if compressedDir == "" {
					return fmt.Errorf("vcpwq: -c is required alongside -i")
				}
				if err := encodeDir(opts, inputDir, compressedDir, bitBudget, multichannel); err != nil {
					return err
				}
			}
			if outputDir != "" {
				if compressedDir == "" {
					return fmt.Errorf("vcpwq: -c is required alongside -o")
				}
				if err := decodeDir(opts, compressedDir, outputDir, multichannel); err != nil {
					return err
				}
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&inputDir, "input", "i", "", "folder of raw sample files to encode")
	flags.StringVarP(&compressedDir, "compressed", "c", "", "folder of encoded bitstream files")
	flags.StringVarP(&outputDir, "output", "o", "", "folder to write decoded sample files to")
	flags.IntVar(&blockLength, "bl", framing.BL1, "block length (32, 64, 128, 256, or 512)")
	flags.IntVarP(&bitBudget, "budget", "b", 40, "bit budget per block")
	flags.IntVar(&sampleRate, "fs", framing.FS1, "sampling rate in Hz")
	flags.IntVar(&maxChannels, "ch", framing.DefaultMaxChannels, "maximum channel count")
	flags.BoolVar(&multichannel, "md", false, "treat each file as a multichannel, comma-delimited CSV")

	return cmd
}

func encodeDir(opts *vcpwq.Options, inputDir, compressedDir string, bitBudget int, multichannel bool) error {
	if err := os.MkdirAll(compressedDir, 0o755); err != nil {
		return fmt.Errorf("vcpwq: %w", err)
	}
	files, err := sampleFiles(inputDir)
	if err != nil {
		return err
	}
	for _, name := range files {
		if err := encodeFile(opts, filepath.Join(inputDir, name), compressedDir, bitBudget, multichannel); err != nil {
			return fmt.Errorf("vcpwq: encoding %s: %w", name, err)
		}
	}
	return nil
}

func encodeFile(opts *vcpwq.Options, path, compressedDir string, bitBudget int, multichannel bool) error {
	enc, err := vcpwq.NewEncoder(opts)
	if err != nil {
		return err
	}

	var bits bitio.Bits
	if multichannel {
		channels, err := readCSV(path)
		if err != nil {
			return err
		}
		bits, err = enc.EncodeMD(channels, bitBudget)
		if err != nil {
			return err
		}
	} else {
		samples, err := readSamples(path)
		if err != nil {
			return err
		}
		bits, err = enc.Encode1D(samples, bitBudget)
		if err != nil {
			return err
		}
	}

	out := filepath.Join(compressedDir, baseName(path)+".vcpwq")
	return writeContainer(out, bits)
}

func decodeDir(opts *vcpwq.Options, compressedDir, outputDir string, multichannel bool) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("vcpwq: %w", err)
	}
	entries, err := os.ReadDir(compressedDir)
	if err != nil {
		return fmt.Errorf("vcpwq: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".vcpwq" {
			continue
		}
		if err := decodeFile(opts, filepath.Join(compressedDir, entry.Name()), outputDir, multichannel); err != nil {
			return fmt.Errorf("vcpwq: decoding %s: %w", entry.Name(), err)
		}
	}
	return nil
}

func decodeFile(opts *vcpwq.Options, path, outputDir string, multichannel bool) error {
	bits, err := readContainer(path)
	if err != nil {
		return err
	}
	dec := vcpwq.NewDecoder(opts)

	out := filepath.Join(outputDir, baseName(path)+".txt")
	if multichannel {
		channels, err := dec.DecodeMD(bits)
		if err != nil {
			return err
		}
		return writeCSV(out, channels)
	}
	samples, err := dec.Decode1D(bits)
	if err != nil {
		return err
	}
	return writeSamples(out, samples)
}

func sampleFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("vcpwq: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".txt", ".csv":
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// splitFields breaks a line on commas and whitespace, the
// whitespace/comma-delimited format this CLI reads and writes.
func splitFields(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
}

func readSamples(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("vcpwq: %w", err)
	}
	defer f.Close()

	var samples []float64
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		for _, field := range splitFields(scanner.Text()) {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("vcpwq: parsing %q: %w", field, err)
			}
			samples = append(samples, v)
		}
	}
	return samples, scanner.Err()
}

func readCSV(path string) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("vcpwq: %w", err)
	}
	defer f.Close()

	var channels [][]float64
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := splitFields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if channels == nil {
			channels = make([][]float64, len(fields))
		}
		for c, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("vcpwq: parsing %q: %w", field, err)
			}
			channels[c] = append(channels[c], v)
		}
	}
	return channels, scanner.Err()
}

func writeSamples(path string, samples []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("vcpwq: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, v := range samples {
		fmt.Fprintf(w, "%.10g\n", v)
	}
	return w.Flush()
}

func writeCSV(path string, channels [][]float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("vcpwq: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if len(channels) == 0 {
		return w.Flush()
	}
	rows := len(channels[0])
	for r := 0; r < rows; r++ {
		for c, channel := range channels {
			if c > 0 {
				w.WriteByte(',')
			}
			fmt.Fprintf(w, "%.10g", channel[r])
		}
		w.WriteByte('\n')
	}
	return w.Flush()
}

// writeContainer writes a packed bitstream preceded by an 8-byte
// little-endian bit count, since Pack zero-pads its final byte and
// the exact bit length has to survive the round trip through disk.
func writeContainer(path string, bits bitio.Bits) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("vcpwq: %w", err)
	}
	defer f.Close()

	var header [8]byte
	binary.LittleEndian.PutUint64(header[:], uint64(len(bits)))
	if _, err := f.Write(header[:]); err != nil {
		return fmt.Errorf("vcpwq: %w", err)
	}
	if _, err := f.Write(bitio.Pack(bits)); err != nil {
		return fmt.Errorf("vcpwq: %w", err)
	}
	return nil
}

func readContainer(path string) (bitio.Bits, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("vcpwq: %w", err)
	}
	if len(data) < 8 {
		return nil, fmt.Errorf("vcpwq: %s is too short to be a vcpwq container", path)
	}
	nbits := binary.LittleEndian.Uint64(data[:8])
	return bitio.Unpack(data[8:], int(nbits)), nil
}
