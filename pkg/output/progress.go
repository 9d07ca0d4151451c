package output

import (
	"io"
	"os"

	"github.com/cheggaaa/pb/v3"
	"golang.org/x/term"

	"github.com/tdelacour/housekeep/pkg/models"
)

// ProgressFormatter renders a progress bar while entries are processed,
// then prints the human summary. It degrades to plain human output when
// stdout is not a terminal.
type ProgressFormatter struct {
	human *HumanFormatter
	bar   *pb.ProgressBar
	tty   bool
}

// NewProgressFormatter creates a new progress-bar formatter
func NewProgressFormatter() *ProgressFormatter {
	return &ProgressFormatter{human: NewHumanFormatter()}
}

// Start initializes the progress bar
func (f *ProgressFormatter) Start(writer io.Writer, totalFiles int, totalBytes int64) error {
	f.tty = isTerminal(writer)
	if !f.tty {
		return f.human.Start(writer, totalFiles, totalBytes)
	}

	f.bar = pb.Full.Start64(totalBytes)
	f.bar.Set(pb.Bytes, true)
	if writer != nil {
		f.bar.SetWriter(writer)
	}
	return nil
}

// Progress advances the bar by the bytes of each completed entry
func (f *ProgressFormatter) Progress(update ProgressUpdate) error {
	if !f.tty {
		return f.human.Progress(update)
	}

	if update.Type == "entry_complete" && update.Outcome == models.OutcomeMoved {
		f.bar.Add64(update.Bytes)
	}
	return nil
}

// Complete finishes the bar and prints the summary
func (f *ProgressFormatter) Complete(report *models.RunReport) error {
	if f.bar != nil {
		f.bar.Finish()
	}
	if f.human.writer == nil {
		f.human.writer = os.Stdout
	}
	return f.human.Complete(report)
}

// Error reports a fatal error
func (f *ProgressFormatter) Error(err error) error {
	if f.bar != nil {
		f.bar.Finish()
	}
	return f.human.Error(err)
}

// Name returns the formatter name
func (f *ProgressFormatter) Name() string {
	return "progress"
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		if writer == nil {
			file = os.Stdout
		} else {
			return false
		}
	}
	return term.IsTerminal(int(file.Fd()))
}
