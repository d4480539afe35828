package data

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

// loadTileFile reads a CSV tile file: each line is a row of comma-separated
// terrain codes. File rows are Y lines, columns are X values. Blank lines and
// lines starting with '#' are skipped; unparsable codes read as 0.
func loadTileFile(path string, xSize, ySize int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// flat array: tiles[x*ySize + y]
	tiles := make([]byte, xSize*ySize)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024)

	y := 0
	for scanner.Scan() && y < ySize {
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || line[0] == '#' {
			continue
		}

		x := 0
		for _, tok := range strings.Split(line, ",") {
			if x >= xSize {
				break
			}
			val, err := strconv.ParseUint(strings.TrimSpace(tok), 10, 8)
			if err != nil {
				val = 0
			}
			tiles[x*ySize+y] = byte(val)
			x++
		}
		y++
	}

	return tiles, scanner.Err()
}
