package catalog

import (
	"bufio"
	"errors"
	"io"
)

// maxLineBytes bounds one record line. Longer lines are skipped, not fatal.
const maxLineBytes = 1 << 20

// eachLine calls fn with every line of r (1-based number, line ending
// stripped) until fn returns false. Lines over maxLineBytes are passed to
// tooLong instead and reading continues with the next line.
func eachLine(r io.Reader, fn func(no int, line string) bool, tooLong func(no int)) error {
	br := bufio.NewReader(r)
	var (
		buf  []byte
		over bool
		no   int
	)
	for {
		frag, isPrefix, err := br.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if !over {
			if len(buf)+len(frag) > maxLineBytes {
				over = true
				buf = buf[:0]
			} else {
				buf = append(buf, frag...)
			}
		}
		if isPrefix {
			continue
		}
		no++
		if over {
			over = false
			if tooLong != nil {
				tooLong(no)
			}
			continue
		}
		line := string(buf)
		buf = buf[:0]
		if !fn(no, line) {
			return nil
		}
	}
}
