package main

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mgutz/ansi"

	"github.com/alivechess/server/internal/world"
)

var (
	frame   = ansi.ColorFunc("cyan+b")
	section = ansi.ColorFunc("yellow")
	dots    = ansi.ColorFunc("black+h")
	number  = ansi.ColorFunc("green")
	bold    = ansi.ColorFunc("white+b")
)

const bannerWidth = 46

func printBanner(serverName, instance string) {
	fmt.Println()
	fmt.Println(frame("  ┌" + strings.Repeat("─", bannerWidth-3) + "┐"))
	fmt.Println(frame("  │") + center("AliveChess world server", bannerWidth-3) + frame("│"))
	fmt.Println(frame("  └" + strings.Repeat("─", bannerWidth-3) + "┘"))
	fmt.Println()
	fmt.Printf("  %s %s %s\n\n", bold("server:"), serverName, dots("("+instance+")"))
}

func center(s string, width int) string {
	pad := width - utf8.RuneCountInString(s)
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad/2) + s + strings.Repeat(" ", pad-pad/2)
}

func printSection(title string) {
	n := bannerWidth - utf8.RuneCountInString(title) - 1
	if n < 3 {
		n = 3
	}
	fmt.Println(section("  ── " + title + " " + strings.Repeat("─", n)))
}

func printStat(label string, count int) {
	num := fmt.Sprint(count)
	n := bannerWidth - 4 - utf8.RuneCountInString(label) - len(num)
	if n < 3 {
		n = 3
	}
	fmt.Printf("  %s %s %s\n", label, dots(strings.Repeat("·", n)), number(num))
}

// printWorld lists the entity counts of a ready world.
func printWorld(w *world.World) {
	printSection(fmt.Sprintf("world %d  %dx%d", w.ID(), w.Width(), w.Height()))
	counts := w.Counts()
	for _, k := range world.Kinds() {
		printStat(k.String(), counts[k])
	}
	printStat("observers", w.ObserverCount())
	fmt.Println()
}
