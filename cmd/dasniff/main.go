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

type SniffCmd struct {
	Capture string           `arg:"" type:"existingfile" help:"USB sniffer CSV export to recover the DA from"`
	Output  string           `arg:"" optional:"" default:"DA.bin" type:"path" help:"Where to write the recovered DA"`
	Version kong.VersionFlag `short:"v" help:"Show version information"`
}

func (c *SniffCmd) Run() error {
	res, err := mtk.ExtractSniffPayloadFile(c.Capture, c.Output)
	fatalIfErr(c.Capture, "extract DA from capture", err)
	log.Printf("Capture had %d records, %d CDC OUT, %d carrying payload\n",
		res.Records, res.OutRecords, res.PayloadRecords)
	hash, err := mtk.Md5File(c.Output)
	fatalIfErr(c.Output, "hash output file", err)
	color.New(color.FgGreen).Fprintf(os.Stderr,
		"Successfully extracted %s (%d bytes) from %s\n", c.Output, res.Length, c.Capture)
	result := make(map[string]interface{})
	result["Capture"] = c.Capture
	result["Outfile"] = c.Output
	result["Records"] = res.Records
	result["OutRecords"] = res.OutRecords
	result["PayloadRecords"] = res.PayloadRecords
	result["Length"] = res.Length
	result["MD5"] = hash
	PrintJson(result)
	return nil
}

var cli SniffCmd

func main() {
	// Bare invocation is a request for help, not a malformed command
	if len(os.Args) < 2 {
		os.Args = append(os.Args, "--help")
	}
	ctx := kong.Parse(&cli,
		kong.Name("dasniff"),
		kong.ShortUsageOnError(),
		kong.Description("Recover a MediaTek Download Agent binary from a USB sniffer CSV export"),
		kong.Vars{
			"version": "dasniff version " + AppVersion,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
