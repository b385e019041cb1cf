package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/quizdeck/backend/internal/quiz"
	"github.com/quizdeck/backend/internal/session"
	"github.com/quizdeck/backend/internal/source"
	"github.com/quizdeck/backend/internal/tui"
)

func main() {
	shuffleChoices := flag.Bool("shuffle", false, "shuffle answer choices")
	shuffleQuestions := flag.Bool("shuffle-questions", false, "shuffle question order")
	excludeRefs := flag.Bool("exclude-references", false, "drop [Reference ...] lines from explanations")
	noColor := flag.Bool("no-color", false, "disable colored output")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <file|url>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	text, err := source.Load(context.Background(), flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	questions, stats := quiz.NewParser(quiz.ParseOptions{ExcludeReferences: *excludeRefs}).ParseWithStats(text)
	if len(questions) == 0 {
		fmt.Fprintln(os.Stderr, "No questions found. Check the quiz format.")
		os.Exit(1)
	}
	if dropped := stats.Dropped(); dropped > 0 {
		fmt.Fprintf(os.Stderr, "Skipped %d malformed or duplicate block(s).\n", dropped)
	}

	sess := session.New(questions, session.Options{
		ShuffleQuestions: *shuffleQuestions,
		ShuffleChoices:   *shuffleChoices,
	})

	final, err := tea.NewProgram(tui.NewModel(sess, tui.Options{NoColor: *noColor})).Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if m, ok := final.(tui.Model); ok && m.Summary() != nil {
		s := m.Summary()
		fmt.Printf("Final score: %d/%d (%d%%)\n", s.Correct, s.Total, s.Percent)
	}
}
