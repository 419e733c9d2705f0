// blackcalc prices European puts and calls under the Black and
// Black-Scholes-Merton models and inverts quoted prices to implied
// volatility.
package main

import (
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/meenmo/qflib/black"
	"github.com/meenmo/qflib/bsm"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	logger := logrus.New()
	logger.SetOutput(stderr)
	logger.SetFormatter(&logrus.JSONFormatter{})

	if len(args) == 0 {
		usage(stderr)
		return 2
	}

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "black":
		return runBlack(args[1:], stdout, stderr, logger)
	case "bsm":
		return runBSM(args[1:], stdout, stderr, logger)
	case "-h", "--help", "help":
		usage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		usage(stderr)
		return 2
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: blackcalc <command> [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  black  Forward put/call value, greeks and implied vol")
	fmt.Fprintln(w, "  bsm    Spot-parameterized put value, greeks and implied vol")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run `blackcalc <command> -h` for command-specific help.")
}

func runBlack(args []string, stdout, stderr io.Writer, logger *logrus.Logger) int {
	fs := flag.NewFlagSet("blackcalc black", flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := fs.Float64("f", 100, "Forward")
	k := fs.Float64("k", 100, "Strike")
	sigma := fs.Float64("sigma", 0.2, "Volatility (annualized)")
	t := fs.Float64("t", 1, "Time to expiry in years")
	price := fs.Float64("price", 0, "Quoted put price; when set, solve for implied vol instead")
	call := fs.Bool("call", false, "Price a call instead of a put")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	vol := *sigma * sqrtT(*t)

	if *price > 0 {
		s, err := black.PutImplied(*f, *price, *k)
		if err != nil {
			logger.Errorf("implied vol: %v", err)
			return 1
		}
		fmt.Fprintf(stdout, "implied vol: %.8f (per sqrt-year: %.8f)\n", s, s/sqrtT(*t))
		return 0
	}

	if *call {
		v, err := black.CallValue(*f, vol, *k)
		if err != nil {
			logger.Errorf("call value: %v", err)
			return 1
		}
		d, err := black.CallDelta(*f, vol, *k)
		if err != nil {
			logger.Errorf("call delta: %v", err)
			return 1
		}
		fmt.Fprintf(stdout, "call value: %.8f\ndelta:      %.8f\n", v, d)
		return 0
	}

	v, err := black.PutValue(*f, vol, *k)
	if err != nil {
		logger.Errorf("put value: %v", err)
		return 1
	}
	d, _ := black.PutDelta(*f, vol, *k)
	g, _ := black.PutGamma(*f, vol, *k)
	vg, _ := black.PutVega(*f, vol, *k)
	fmt.Fprintf(stdout, "put value: %.8f\ndelta:     %.8f\ngamma:     %.8f\nvega:      %.8f\n", v, d, g, vg)
	return 0
}

func runBSM(args []string, stdout, stderr io.Writer, logger *logrus.Logger) int {
	fs := flag.NewFlagSet("blackcalc bsm", flag.ContinueOnError)
	fs.SetOutput(stderr)
	r := fs.Float64("r", 0.05, "Continuously compounded rate")
	s0 := fs.Float64("s0", 100, "Spot")
	k := fs.Float64("k", 100, "Strike")
	sigma := fs.Float64("sigma", 0.2, "Volatility (annualized)")
	t := fs.Float64("t", 1, "Time to expiry in years")
	price := fs.Float64("price", 0, "Quoted put price; when set, solve for implied vol instead")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *price > 0 {
		s, err := bsm.PutImplied(*r, *s0, *price, *t, *k)
		if err != nil {
			logger.Errorf("implied vol: %v", err)
			return 1
		}
		fmt.Fprintf(stdout, "implied vol: %.8f\n", s)
		return 0
	}

	v, err := bsm.PutValue(*r, *s0, *sigma, *t, *k)
	if err != nil {
		logger.Errorf("put value: %v", err)
		return 1
	}
	d, _ := bsm.PutDelta(*r, *s0, *sigma, *t, *k)
	g, _ := bsm.PutGamma(*r, *s0, *sigma, *t, *k)
	vg, _ := bsm.PutVega(*r, *s0, *sigma, *t, *k)
	fmt.Fprintf(stdout, "put value: %.8f\ndelta:     %.8f\ngamma:     %.8f\nvega:      %.8f\n", v, d, g, vg)
	return 0
}

func sqrtT(t float64) float64 {
	if t <= 0 {
		return 1
	}
	return math.Sqrt(t)
}
