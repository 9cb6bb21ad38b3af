// Command mdhtml renders a Markdown file to HTML on stdout, for a quick
// local preview of what a docmd import will contain.
package main

import (
	"flag"
	"io"
	"log"
	"os"

	"github.com/russross/blackfriday"
)

func main() {
	title := flag.String("title", "preview", "page title")
	flag.Parse()

	in := os.Stdin
	if args := flag.Args(); len(args) > 0 {
		f, err := os.Open(args[0])
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		in = f
	}

	if err := run(in, os.Stdout, *title); err != nil {
		log.Fatal(err)
	}
}

func run(in io.Reader, out io.Writer, title string) error {
	b, err := io.ReadAll(in)
	if err != nil {
		return err
	}

	body := blackfriday.Run(b, blackfriday.WithExtensions(0|
		blackfriday.NoIntraEmphasis|
		blackfriday.Tables|
		blackfriday.FencedCode|
		blackfriday.Autolink|
		blackfriday.Strikethrough|
		blackfriday.SpaceHeadings|
		blackfriday.HeadingIDs|
		blackfriday.BackslashLineBreak,
	))

	if _, err := io.WriteString(out, "<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>"+
		title+"</title></head>\n<body>\n"); err != nil {
		return err
	}
	if _, err := out.Write(body); err != nil {
		return err
	}
	_, err = io.WriteString(out, "</body></html>\n")
	return err
}
