package circuit

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// WriteResults writes the history as comma+space separated rows under a
// "Time, Node1.., Current1.." header.
func (c *Circuit) WriteResults(w io.Writer) error {
	header := []string{"Time"}
	for n := 1; n <= c.numNodes; n++ {
		header = append(header, fmt.Sprintf("Node%d", n))
	}
	for k := 1; k <= c.numVoltageSources; k++ {
		header = append(header, fmt.Sprintf("Current%d", k))
	}
	if _, err := fmt.Fprintln(w, strings.Join(header, ", ")); err != nil {
		return err
	}

	for _, r := range c.results.entries {
		row := make([]string, 0, len(r.Solution)+1)
		row = append(row, strconv.FormatFloat(r.Time, 'g', -1, 64))
		for _, v := range r.Solution {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if _, err := fmt.Fprintln(w, strings.Join(row, ", ")); err != nil {
			return err
		}
	}
	return nil
}

func (c *Circuit) SaveResultsToFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("opening result file: %w", err)
	}

	if err := c.WriteResults(f); err != nil {
		f.Close()
		return fmt.Errorf("writing result file: %w", err)
	}
	return f.Close()
}
