// Command vnicolorize is a smoke-testing tool for a PAL/VNI pair: it reads
// raw indexed frames from stdin (one frame per width*height bytes) and
// writes the colorized indexed pixels plus expanded palette to stdout.
package main

import (
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	vnilib "github.com/PPUC/libvni"
)

func main() {
	app := &cli.App{
		Name:  "vnicolorize",
		Usage: "colorize a stream of indexed DMD frames against a PAL/VNI pair",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "pal",
				EnvVars:  []string{"VNICOLORIZE_PAL"},
				Required: true,
				Usage:    "path to the PAL palette/mapping file",
			},
			&cli.StringFlag{
				Name:    "vni",
				EnvVars: []string{"VNICOLORIZE_VNI"},
				Usage:   "path to the VNI animation bundle (optional)",
			},
			&cli.StringFlag{
				Name:    "pac",
				EnvVars: []string{"VNICOLORIZE_PAC"},
				Usage:   "path to an encrypted PAC file (unsupported; accepted for API compatibility only)",
			},
			&cli.IntFlag{
				Name:     "width",
				Required: true,
				Usage:    "input frame width in pixels",
			},
			&cli.IntFlag{
				Name:     "height",
				Required: true,
				Usage:    "input frame height in pixels",
			},
			&cli.IntFlag{
				Name:     "bit-length",
				Required: true,
				Usage:    "input frame bit depth (number of planes)",
			},
			&cli.StringFlag{
				Name:  "scaler",
				Value: "none",
				Usage: "upscaler for pre-upscaled content: none, 2x, double",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "log diagnostics (PAC notice, etc.) to stderr",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	logger := log.New(ioutil.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}

	palFile, err := os.Open(c.String("pal"))
	if err != nil {
		return fmt.Errorf("opening PAL file: %w", err)
	}
	defer palFile.Close()

	var vniReader io.Reader
	if path := c.String("vni"); path != "" {
		vniFile, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening VNI file: %w", err)
		}
		defer vniFile.Close()
		vniReader = vniFile
	}

	opts := []vnilib.Option{vnilib.WithLogger(logger)}
	if pac := c.String("pac"); pac != "" {
		opts = append(opts, vnilib.WithPacPath(pac))
	}

	ctx, err := vnilib.Load(palFile, vniReader, opts...)
	if err != nil {
		return fmt.Errorf("loading PAL/VNI: %w", err)
	}

	switch c.String("scaler") {
	case "2x":
		ctx.SetScalerMode(vnilib.ScalerScale2X)
	case "double":
		ctx.SetScalerMode(vnilib.ScalerScaleDouble)
	case "none", "":
	default:
		return fmt.Errorf("unknown scaler mode %q", c.String("scaler"))
	}

	width := c.Int("width")
	height := c.Int("height")
	bitLength := c.Int("bit-length")
	frameSize := width * height

	buf := make([]byte, frameSize)
	for {
		if _, err := io.ReadFull(os.Stdin, buf); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil
			}
			return fmt.Errorf("reading frame: %w", err)
		}

		if !ctx.Colorize(buf, width, height, bitLength) {
			continue
		}
		out := ctx.Frame()
		if _, err := os.Stdout.Write(out.Pixels); err != nil {
			return fmt.Errorf("writing frame: %w", err)
		}
		if _, err := os.Stdout.Write(out.Palette); err != nil {
			return fmt.Errorf("writing palette: %w", err)
		}
	}
}
