package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/edp1096/jj-spice/pkg/util"
)

func sortedNames(results map[string][]float64) (voltages, currents []string) {
	for name := range results {
		if strings.HasPrefix(name, "V(") {
			voltages = append(voltages, name)
		} else if strings.HasPrefix(name, "I(") {
			currents = append(currents, name)
		}
	}
	sort.Strings(voltages)
	sort.Strings(currents)
	return voltages, currents
}

func printRow(w io.Writer, results map[string][]float64, voltages, currents []string, i int) {
	for _, name := range voltages {
		fmt.Fprintf(w, "%s=%s  ", name, util.FormatValueFactor(results[name][i], "V"))
	}
	for _, name := range currents {
		fmt.Fprintf(w, "%s=%s  ", name, util.FormatValueFactor(results[name][i], "A"))
	}
	fmt.Fprintln(w)
}

func printResults(w io.Writer, results map[string][]float64) {
	fmt.Fprintln(w, "\nAnalysis Results:")
	fmt.Fprintln(w, "================")

	voltages, currents := sortedNames(results)

	// DC Sweep
	if sweep1, isDC := results["SWEEP1"]; isDC {
		fmt.Fprintf(w, "\nDC Sweep Analysis Results (%d points):\n", len(sweep1))
		sweep2, hasNested := results["SWEEP2"]
		for i := range sweep1 {
			if hasNested {
				fmt.Fprintf(w, "V1=%-9s V2=%-9s  ",
					util.FormatValueFactor(sweep1[i], "V"),
					util.FormatValueFactor(sweep2[i], "V"))
			} else {
				fmt.Fprintf(w, "V=%-9s  ", util.FormatValueFactor(sweep1[i], "V"))
			}
			printRow(w, results, voltages, currents, i)
		}
		return
	}

	// Operating point
	times, isTran := results["TIME"]
	if !isTran {
		fmt.Fprintln(w, "\nNode Voltages:")
		for _, name := range voltages {
			fmt.Fprintf(w, "%s = %s\n", name, util.FormatValueFactor(results[name][0], "V"))
		}
		fmt.Fprintln(w, "\nBranch Currents:")
		for _, name := range currents {
			fmt.Fprintf(w, "%s = %s\n", name, util.FormatValueFactor(results[name][0], "A"))
		}
		return
	}

	// Transient
	fmt.Fprintf(w, "\nTransient Analysis Results (%d time points):\n", len(times))
	for i, t := range times {
		fmt.Fprintf(w, "%9s  ", util.FormatValueFactor(t, "s"))
		printRow(w, results, voltages, currents, i)
	}
}
