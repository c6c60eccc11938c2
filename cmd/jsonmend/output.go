package main

import (
	"fmt"
	"io"

	"charm.land/jsonmend"
	"github.com/fatih/color"
)

var (
	validColor    = color.New(color.FgGreen, color.Bold)
	repairedColor = color.New(color.FgYellow, color.Bold)
	failedColor   = color.New(color.FgRed, color.Bold)
)

func printStatus(w io.Writer, path string, out jsonmend.Outcome) {
	switch out.State {
	case jsonmend.ParseStateSuccessful:
		validColor.Fprint(w, "valid    ")
	case jsonmend.ParseStateRepaired:
		repairedColor.Fprint(w, "repaired ")
	default:
		failedColor.Fprint(w, "failed   ")
	}
	fmt.Fprint(w, path)
	if out.Position != nil {
		fmt.Fprintf(w, " (%s)", out.Position)
	}
	fmt.Fprintln(w)
}

func printValidity(w io.Writer, path string, valid bool) {
	if valid {
		validColor.Fprint(w, "valid   ")
	} else {
		failedColor.Fprint(w, "invalid ")
	}
	fmt.Fprintln(w, path)
}
