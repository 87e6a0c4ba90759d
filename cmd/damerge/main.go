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

type MergeCmd struct {
	Source  string           `arg:"" type:"existingfile" help:"DA file to take the header from"`
	Body    string           `arg:"" type:"existingfile" help:"DA body to append after the header"`
	Output  string           `arg:"" type:"path" help:"Where to write the merged DA"`
	Version kong.VersionFlag `short:"v" help:"Show version information"`
}

func (c *MergeCmd) Run() error {
	headerLength, bodyLength, err := mtk.MergeBodyFile(c.Source, c.Body, c.Output)
	fatalIfErr(c.Output, "merge DA header and body", err)
	if headerLength < mtk.HeaderLength {
		color.New(color.FgYellow).Fprintf(os.Stderr,
			"Warning: %s is shorter than the %d byte DA header (only %d header bytes copied)\n",
			c.Source, mtk.HeaderLength, headerLength)
	}
	log.Printf("Merged %d header bytes from %s with %d body bytes from %s\n",
		headerLength, c.Source, bodyLength, c.Body)
	hash, err := mtk.Md5File(c.Output)
	fatalIfErr(c.Output, "hash output file", err)
	result := make(map[string]interface{})
	result["Source"] = c.Source
	result["Bodyfile"] = c.Body
	result["Outfile"] = c.Output
	result["HeaderLength"] = headerLength
	result["BodyLength"] = bodyLength
	result["TotalLength"] = headerLength + bodyLength
	result["MD5"] = hash
	PrintJson(result)
	return nil
}

var cli MergeCmd

func main() {
	// Bare invocation is a request for help, not a malformed command
	if len(os.Args) < 2 {
		os.Args = append(os.Args, "--help")
	}
	ctx := kong.Parse(&cli,
		kong.Name("damerge"),
		kong.ShortUsageOnError(),
		kong.Description("Combine the fixed-size header of one MediaTek Download Agent file with the body of another"),
		kong.Vars{
			"version": "damerge version " + AppVersion,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
