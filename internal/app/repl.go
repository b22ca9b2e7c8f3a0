package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/shortly/internal/present"
	"github.com/hyperifyio/shortly/internal/summarize"
)

const replHelp = `Commands:
  n <count>           set the number of summary sentences
  summarize [target]  summarize a URL, file or - (defaults to the last target)
  remote [target]     summarize with the remote backend
  token <value>       set the Hugging Face API token
  show                print the current summary
  copy                print the summary as a copy block
  export [path]       write the summary as text (default shortly-summary.txt)
  pdf [path]          write the summary as PDF (default shortly-summary.pdf)
  status              print the current status
  wait                wait for the request in flight
  clear               cancel the request in flight and clear the summary
  quit                exit`

// syncWriter serializes writes from the command loop and request goroutines.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, format, args...)
}

func (s *syncWriter) render(bullets []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = present.Render(s.w, bullets)
}

// Interactive runs the line-oriented command loop until quit or EOF.
// Summarize requests run in the background; starting a new one cancels the
// previous. At EOF the loop waits for the request in flight.
func (a *App) Interactive(ctx context.Context, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := &syncWriter{w: out}
	s := a.session
	s.OnStatus(func(st string) { w.printf("» %s\n", st) })
	defer s.OnStatus(nil)

	var wg sync.WaitGroup
	lastTarget := a.cfg.Target
	start := func(target string, useRemote bool) {
		if target == "" {
			target = lastTarget
		}
		if target == "" {
			w.printf("usage: summarize <url|file|->\n")
			return
		}
		lastTarget = target
		wg.Add(1)
		go func() {
			defer wg.Done()
			var (
				res Result
				err error
			)
			if useRemote {
				res, err = s.SummarizeRemote(ctx, target)
			} else {
				res, err = s.SummarizeLocal(ctx, target)
			}
			if errors.Is(err, ErrSuperseded) {
				return
			}
			if err != nil {
				log.Debug().Err(err).Str("request", res.RequestID).Msg("request failed")
				if res.Remote {
					return
				}
			}
			w.render(res.Bullets)
		}()
	}

	w.printf("» %s\n", s.Status())
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		cmd, arg := splitCommand(scanner.Text())
		switch cmd {
		case "":
		case "n", "sentences":
			w.printf("Sentences: %d\n", s.SetCount(summarize.ParseCount(arg)))
		case "summarize", "s":
			start(arg, false)
		case "remote", "r":
			start(arg, true)
		case "token":
			if arg == "" {
				w.printf("usage: token <value>\n")
				continue
			}
			if err := s.SetToken(arg); err != nil {
				w.printf("%v\n", err)
				continue
			}
			w.printf("Token set.\n")
		case "show":
			w.render(s.Summary())
		case "copy":
			txt := present.CopyText(s.Summary())
			if txt == "" {
				continue
			}
			w.printf("%s\n", txt)
		case "export":
			p, err := present.WriteExport(arg, s.Summary())
			switch {
			case errors.Is(err, present.ErrNothingToExport):
				w.printf("Nothing to download\n")
			case err != nil:
				w.printf("Export failed: %v\n", err)
			default:
				w.printf("Downloaded summary to %s.\n", p)
			}
		case "pdf":
			title := "Summary"
			if lastTarget != "" {
				title = titleFor(lastTarget)
			}
			p, err := present.ExportPDF(arg, title, s.Summary())
			switch {
			case errors.Is(err, present.ErrNothingToExport):
				w.printf("Nothing to download\n")
			case err != nil:
				w.printf("PDF export failed: %v\n", err)
			default:
				w.printf("Wrote PDF to %s.\n", p)
			}
		case "status":
			w.printf("%s\n", s.Status())
		case "wait":
			wg.Wait()
		case "clear":
			s.Clear()
		case "help", "?":
			w.printf("%s\n", replHelp)
		case "quit", "exit", "q":
			s.Cancel()
			wg.Wait()
			return nil
		default:
			w.printf("unknown command %q; type help\n", cmd)
		}
	}
	wg.Wait()
	return scanner.Err()
}

func splitCommand(line string) (string, string) {
	line = strings.TrimSpace(line)
	cmd, arg, _ := strings.Cut(line, " ")
	return strings.ToLower(cmd), strings.TrimSpace(arg)
}
