package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lixenwraith/hushmaze/maze"
)

var (
	widthFlag   = flag.Int("w", 0, "Width in cells (0 = prompt)")
	heightFlag  = flag.Int("h", 0, "Height in cells (0 = prompt)")
	seedFlag    = flag.Int64("seed", 0, "Seed (0 = random)")
	noBraidFlag = flag.Bool("nobraid", false, "Skip braiding, print the perfect maze")
)

func main() {
	flag.Parse()

	// Non-interactive when dimensions are given
	if *widthFlag > 0 && *heightFlag > 0 {
		if err := generate(os.Stdout, maze.Config{
			Width:   *widthFlag,
			Height:  *heightFlag,
			NoBraid: *noBraidFlag,
			Seed:    *seedFlag,
		}); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	prompt(os.Stdin, os.Stdout)
}

// prompt runs the interactive loop until declined or input ends, returning mazes printed
func prompt(in io.Reader, out io.Writer) int {
	reader := bufio.NewReader(in)
	printed := 0
	for {
		fmt.Fprintln(out, "\n=== HUSHMAZE GENERATOR ===")

		w, ok := getInt(reader, out, "Width (default 16): ", 16)
		if !ok {
			return printed
		}
		h, ok := getInt(reader, out, "Height (default 12): ", 12)
		if !ok {
			return printed
		}
		seed, ok := getInt(reader, out, "Seed (default random): ", 0)
		if !ok {
			return printed
		}

		fmt.Fprint(out, "Perfect maze, no braiding? [y/N]: ")
		braidStr, ok := readLine(reader)
		if !ok {
			return printed
		}
		noBraid := strings.ToLower(braidStr) == "y"

		if err := generate(out, maze.Config{Width: w, Height: h, NoBraid: noBraid, Seed: int64(seed)}); err != nil {
			fmt.Fprintln(out, "Error:", err)
		} else {
			printed++
		}

		fmt.Fprint(out, "\nGenerate another? [Y/n]: ")
		cont, ok := readLine(reader)
		if !ok || strings.ToLower(cont) == "n" {
			return printed
		}
	}
}

// generate prints the maze with its start-to-far-corner solution
func generate(out io.Writer, cfg maze.Config) error {
	startT := time.Now()
	res, err := maze.Generate(cfg)
	if err != nil {
		return err
	}
	dur := time.Since(startT)

	g := res.Grid
	end := maze.Point{X: g.Width - 1, Y: g.Height - 1}
	solution := maze.SolveCells(g, res.Start, end)

	fmt.Fprintf(out, "Done in %v\n", dur)
	fmt.Fprintf(out, "Grid: %dx%d, carved %d, braided %d, open edges %d\n",
		g.Width, g.Height, res.Carved, res.Braided, g.OpenEdges())
	if solution != nil {
		fmt.Fprintf(out, "Solution: %d cells\n", len(solution))
	} else {
		fmt.Fprintln(out, "Status: unsolvable")
	}

	marks := make(map[maze.Point]rune, len(solution)+2)
	for _, p := range solution {
		marks[p] = '.'
	}
	marks[res.Start] = 'S'
	marks[end] = 'E'
	fmt.Fprint(out, g.Render(marks))
	return nil
}

// --- Input Helpers ---

// readLine returns the trimmed next line; false once input is exhausted
func readLine(r *bufio.Reader) (string, bool) {
	s, err := r.ReadString('\n')
	if err != nil && s == "" {
		return "", false
	}
	return strings.TrimSpace(s), true
}

func getInt(r *bufio.Reader, out io.Writer, prompt string, def int) (int, bool) {
	fmt.Fprint(out, prompt)
	s, ok := readLine(r)
	if !ok {
		return 0, false
	}
	if s == "" {
		return def, true
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def, true
	}
	return v, true
}
