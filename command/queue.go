package command

import (
	"bufio"
	"fmt"
	"io"

	"github.com/ystepanoff/ookcomm/logger"
)

const DefaultQueueSize = 16

// Queue hands console lines from reader goroutines to the node loop without
// ever blocking either side.
type Queue struct {
	lines chan string
}

func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{lines: make(chan string, size)}
}

// Push enqueues line, dropping it when the queue is full.
func (q *Queue) Push(line string) bool {
	select {
	case q.lines <- line:
		return true
	default:
		logger.Error("[Console] Queue full, dropping %q\r\n", line)
		return false
	}
}

// Poll returns the next line, if any.
func (q *Queue) Poll() (string, bool) {
	select {
	case line := <-q.lines:
		return line, true
	default:
		return "", false
	}
}

// Feed pushes every line of r until EOF.
func (q *Queue) Feed(r io.Reader) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		q.Push(sc.Text())
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read console: %w", err)
	}
	return nil
}
