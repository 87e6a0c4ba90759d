package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"

	"github.com/R0rt1z2/dagotools/mtk"
)

const (
	AppVersion = "1.0.0"
)

// Quick way to fail on error, since the whole run is one linear operation.
func fatalIfErr(subject string, doing string, err error) {
	if err != nil {
		log.Fatalf("%s - Couldn't %s: %s", subject, doing, err)
	}
}

func PrintJson(obj interface{}) {
	rawjson, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		log.Fatalln("Couldn't serialize json: ", err)
	}
	fmt.Println(string(rawjson))
}

type SplitCmd struct {
	Source  string           `arg:"" type:"existingfile" help:"DA file to take the body from"`
	Output  string           `arg:"" type:"path" help:"Where to write the DA body"`
	Version kong.VersionFlag `short:"v" help:"Show version information"`
}

func (c *SplitCmd) Run() error {
	skipped, written, err := mtk.ExtractBodyFile(c.Source, c.Output)
	fatalIfErr(c.Source, "extract DA body", err)
	if skipped < mtk.HeaderLength {
		color.New(color.FgYellow).Fprintf(os.Stderr,
			"Warning: %s is shorter than the %d byte DA header (only %d bytes skipped)\n",
			c.Source, mtk.HeaderLength, skipped)
	}
	log.Printf("Extracted %d body bytes from %s\n", written, c.Source)
	hash, err := mtk.Md5File(c.Output)
	fatalIfErr(c.Output, "hash output file", err)
	result := make(map[string]interface{})
	result["Source"] = c.Source
	result["Outfile"] = c.Output
	result["HeaderLength"] = skipped
	result["BodyLength"] = written
	result["MD5"] = hash
	PrintJson(result)
	return nil
}

var cli SplitCmd

func main() {
	// Bare invocation is a request for help, not a malformed command
	if len(os.Args) < 2 {
		os.Args = append(os.Args, "--help")
	}
	ctx := kong.Parse(&cli,
		kong.Name("dasplit"),
		kong.ShortUsageOnError(),
		kong.Description("Split the body out of a MediaTek Download Agent file, dropping the fixed-size header"),
		kong.Vars{
			"version": "dasplit version " + AppVersion,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
