// Copyright © 2024 the ram authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shenwei356/bio/seq"
	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/sync/errgroup"

	"github.com/dbabojelic/ram/ram/engine"
	"github.com/dbabojelic/ram/ram/sequence"
)

// sequences per index batch, measured in total bases
const batchBytes = 1 << 30

// RootCmd is the one and only command of ram.
var RootCmd = &cobra.Command{
	Use:   "ram [flags] <target> [<sequences>]",
	Short: "find overlaps between raw nucleotide sequences",
	Long: `ram finds overlaps between raw nucleotide sequences

It sketches every target sequence into a set of minimizers, indexes the
sketches, and reports collinear chains of minimizers shared with each
query sequence as PAF-like lines on the output.

Attentions:
  1. <target> and <sequences> are FASTA/FASTQ files, optionally gzip-ed,
     or directories of such files.
  2. With a single input, or when both inputs are the same path, ram runs
     in all-vs-all mode and reports each overlap once.

`,
	Version: VERSION,
	Args:    cobra.MaximumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			cmd.Help()
			return
		}

		opt := getOptions(cmd)
		seq.ValidateSeq = false

		var fhLog *os.File
		if opt.Log2File {
			fhLog = addLog(opt.LogFile, opt.Verbose)
		}
		verbose := opt.Verbose
		outputLog := opt.Verbose || opt.Log2File

		timeStart := time.Now()
		defer func() {
			if outputLog {
				log.Infof("elapsed time: %s", time.Since(timeStart))
			}
			if opt.Log2File {
				fhLog.Close()
			}
		}()

		k := getFlagPositiveInt(cmd, "kmer-length")
		w := getFlagPositiveInt(cmd, "window-length")
		frequency := getFlagNonNegativeFloat64(cmd, "frequency-threshold")
		micromize := getFlagBool(cmd, "micromize")
		micromizeFactor := getFlagNonNegativeFloat64(cmd, "micromize-factor")
		keepEnds := getFlagNonNegativeInt(cmd, "keep-ends")
		beginEnd := getFlagNonNegativeInt(cmd, "begin-end")
		m := getFlagPositiveInt(cmd, "min-score")
		g := getFlagPositiveInt(cmd, "max-gap")
		n := getFlagPositiveInt(cmd, "min-anchors")
		bestN := getFlagNonNegativeInt(cmd, "best-n")
		reduceWin := getFlagNonNegativeInt(cmd, "reduce-window")
		hpc := getFlagBool(cmd, "hpc")
		robust := getFlagBool(cmd, "robust")
		outFile := getFlagString(cmd, "out-file")

		switch preset := getFlagString(cmd, "preset"); preset {
		case "":
		case "ava":
			k, w, m, g, n = 19, 5, 100, 10000, 4
		case "map":
			k, w, m, g, n = 19, 10, 40, 5000, 3
		default:
			checkError(fmt.Errorf("unknown preset: %s (available: ava, map)", preset))
		}
		if frequency > 1 {
			checkError(fmt.Errorf("value of flag -f/--frequency-threshold should be in range [0, 1]"))
		}
		if keepEnds > 255 {
			checkError(fmt.Errorf("value of flag -N/--keep-ends should be <= 255"))
		}

		if outputLog {
			log.Infof("ram v%s", VERSION)
			log.Infof("using options: k = %d, w = %d, f = %g, M = %v, m = %d, g = %d, n = %d, t = %d",
				k, w, frequency, micromize, m, g, n, opt.NumCPUs)
		}

		targetFiles := sequenceFiles(args[0], opt.NumCPUs)
		queryFiles := targetFiles
		isAva := true
		if len(args) > 1 {
			queryFiles = sequenceFiles(args[1], opt.NumCPUs)
			isAva = args[0] == args[1]
		}

		eng := engine.New(&engine.Options{
			K: uint32(k), W: uint32(w),
			M: uint32(m), G: uint64(g), N: uint8(n),
			BestN:        uint32(bestN),
			ReduceWindow: uint32(reduceWin),
			Robust:       robust,
			HPC:          hpc,
			Threads:      opt.NumCPUs,
		})

		mapOpts := engine.MapOptions{
			AvoidEqual:     isAva,
			AvoidSymmetric: isAva,

			Micromize:       micromize,
			MicromizeFactor: micromizeFactor,
			KeepEnds:        uint8(keepEnds),
		}

		outfh, gw, wfile, err := outStream(outFile, strings.HasSuffix(outFile, ".gz"), opt.CompressionLevel)
		checkError(err)
		defer func() {
			checkError(outfh.Flush())
			if gw != nil {
				gw.Close()
			}
			if wfile != os.Stdout {
				wfile.Close()
			}
		}()

		targets, err := sequence.NewLoader(targetFiles...)
		checkError(err)
		defer targets.Close()

		for {
			targetBatch, err := targets.Load(batchBytes)
			checkError(err)
			if len(targetBatch) == 0 {
				break
			}
			if outputLog {
				log.Infof("parsed %d target sequences", len(targetBatch))
			}

			checkError(eng.Minimize(targetBatch))
			checkError(eng.Filter(frequency))
			if outputLog {
				log.Infof("minimized targets, index size: %d", eng.IndexSize())
			}

			if isAva {
				// the target batch maps against itself, the symmetric
				// filters keep each overlap reported once
				mapBatch(eng, targetBatch, targetBatch, mapOpts, uint32(beginEnd), opt.NumCPUs, outfh, verbose)
				continue
			}

			queries, err := sequence.NewLoader(queryFiles...)
			checkError(err)
			for {
				queryBatch, err := queries.Load(batchBytes)
				checkError(err)
				if len(queryBatch) == 0 {
					break
				}
				mapBatch(eng, queryBatch, targetBatch, mapOpts, uint32(beginEnd), opt.NumCPUs, outfh, verbose)
			}
			queries.Close()
		}
	},
}

// mapBatch maps every query against the indexed target batch on the
// worker budget and writes the overlaps in query submission order.
func mapBatch(eng *engine.Engine, queries, targets []*sequence.Sequence,
	opts engine.MapOptions, beginEnd uint32, threads int,
	outfh *bufio.Writer, verbose bool) {

	var pbs *mpb.Progress
	var bar *mpb.Bar
	if verbose {
		pbs = mpb.New(mpb.WithWidth(40), mpb.WithOutput(os.Stderr))
		bar = pbs.AddBar(int64(len(queries)),
			mpb.PrependDecorators(
				decor.Name("mapped sequences: ", decor.WC{W: len("mapped sequences: "), C: decor.DindentRight}),
				decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
			),
			mpb.AppendDecorators(
				decor.Percentage(decor.WC{W: 5}),
				decor.OnComplete(decor.Name(""), ". done"),
			),
		)
	}

	results := make([][]engine.Overlap, len(queries))

	var workers errgroup.Group
	workers.SetLimit(threads)
	for i, q := range queries {
		i, q := i, q
		workers.Go(func() error {
			var err error
			if beginEnd > 0 {
				results[i], err = eng.MapBeginEnd(q, opts.AvoidEqual, opts.AvoidSymmetric, beginEnd)
			} else {
				results[i], err = eng.Map(q, opts)
			}
			if bar != nil {
				bar.Increment()
			}
			return err
		})
	}
	checkError(workers.Wait())

	if pbs != nil {
		pbs.Wait()
	}

	rhsOffset := targets[0].ID
	for i, q := range queries {
		for _, o := range results[i] {
			writePAF(outfh, &o, q, targets[o.RhsID-rhsOffset])
		}
	}
}

// Execute runs the root command.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	RootCmd.Flags().SortFlags = false
	RootCmd.CompletionOptions.DisableDefaultCmd = true

	RootCmd.Flags().IntP("kmer-length", "k", 15,
		"length of minimizers")
	RootCmd.Flags().IntP("window-length", "w", 5,
		"length of the sliding window from which minimizers are sampled")
	RootCmd.Flags().BoolP("hpc", "H", false,
		"use homopolymer-compressed minimizers")
	RootCmd.Flags().BoolP("robust", "r", false,
		"robust winnowing, emit only the rightmost window minimum")
	RootCmd.Flags().Float64P("frequency-threshold", "f", 0.001,
		"threshold for ignoring the most frequent minimizers")
	RootCmd.Flags().BoolP("micromize", "M", false,
		"use only a portion of all minimizers of each query")
	RootCmd.Flags().Float64P("micromize-factor", "p", 0,
		"fraction of minimizers kept by -M, 0 for sequence-length/k")
	RootCmd.Flags().IntP("keep-ends", "N", 0,
		"number of minimizers pinned at both sequence ends by -M")
	RootCmd.Flags().IntP("begin-end", "K", 0,
		"map only this long a prefix and suffix of each query, 0 to disable")
	RootCmd.Flags().IntP("min-score", "m", 100,
		"discard chains with chaining score less than this")
	RootCmd.Flags().IntP("max-gap", "g", 10000,
		"stop chain elongation over gaps larger than this")
	RootCmd.Flags().IntP("min-anchors", "n", 4,
		"discard chains consisting of fewer minimizers than this")
	RootCmd.Flags().IntP("best-n", "b", 0,
		"report only this many best overlaps per query, 0 for all")
	RootCmd.Flags().IntP("reduce-window", "i", 0,
		"window size of hierarchical sketch reduction, 0 to disable")
	RootCmd.Flags().StringP("preset", "x", "",
		"preset options, ava (-k19 -w5 -m100 -g10000 -n4) or map (-k19 -w10 -m40 -g5000 -n3)")
	RootCmd.Flags().IntP("threads", "t", 1,
		"number of threads, 0 for all CPUs")
	RootCmd.Flags().StringP("out-file", "o", "-",
		`out file, supports a ".gz" suffix ("-" for stdout)`)
	RootCmd.Flags().String("log", "",
		"log file")
	RootCmd.Flags().Bool("quiet", false,
		"do not print any verbose information")
}
