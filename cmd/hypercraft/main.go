// Command hypercraft is a small demo/driver for the hypervisor core:
// it loads a flat guest image into an mmap'd page, constructs a VM on
// either back-end, and drives VM.Run in a loop logging each VmmTrap.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/felixge/fgprof"
	gprofile "github.com/google/pprof/profile"
	"github.com/pkg/profile"

	"github.com/MROS/hypercraft/console"
	"github.com/MROS/hypercraft/gpt"
	"github.com/MROS/hypercraft/hal"
	"github.com/MROS/hypercraft/riscv/plic"
	riscvvm "github.com/MROS/hypercraft/riscv/vm"
	"github.com/MROS/hypercraft/vmmtrap"
	x86vm "github.com/MROS/hypercraft/x86/vm"
)

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	var err error

	switch os.Args[1] {
	case "boot-x86":
		err = runBootX86(os.Args[2:])
	case "boot-riscv":
		err = runBootRiscv(os.Args[2:])
	default:
		usage()
	}

	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s boot-x86|boot-riscv [flags]\n", os.Args[0])
	os.Exit(2)
}

// bootArgs holds the per-subcommand flags a flat guest image needs.
type bootArgs struct {
	kernel    string
	memSize   int
	profile   bool
	pprofAddr string
}

func parseBootArgs(name string, args []string) (*bootArgs, error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	c := &bootArgs{}

	fs.StringVar(&c.kernel, "k", "", "path to a flat guest image")
	fs.BoolVar(&c.profile, "profile", false, "enable CPU profiling of the run (github.com/pkg/profile)")
	fs.StringVar(&c.pprofAddr, "pprof-addr", "", "serve fgprof/pprof handlers on this address (empty disables)")

	msize := fs.String("m", "16M", "guest memory size: number[gGmMkK]")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if c.kernel == "" {
		return nil, errors.New("cmd/hypercraft: -k is required")
	}

	sz, err := parseSize(*msize, "m")
	if err != nil {
		return nil, err
	}

	c.memSize = sz

	return c, nil
}

// parseSize parses a size string as number[gGmMkK].
func parseSize(s, unit string) (int, error) {
	sz := strings.TrimRight(s, "gGmMkK")
	if len(sz) == 0 {
		return -1, fmt.Errorf("%q: can't parse as num[gGmMkK]: %w", s, strconv.ErrSyntax)
	}

	amt, err := strconv.ParseUint(sz, 0, 0)
	if err != nil {
		return -1, err
	}

	if len(s) > len(sz) {
		unit = s[len(sz):]
	}

	switch unit {
	case "G", "g":
		return int(amt) << 30, nil
	case "M", "m":
		return int(amt) << 20, nil
	case "K", "k":
		return int(amt) << 10, nil
	case "":
		return int(amt), nil
	}

	return -1, fmt.Errorf("can not parse %q as num[gGmMkK]: %w", s, strconv.ErrSyntax)
}

// loadImage reads path into a freshly allocated, page-rounded guest RAM
// region.
func loadImage(h hal.Hal, path string, memSize int) (*hal.Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cmd/hypercraft: read %s: %w", path, err)
	}

	pages := (memSize + hal.PageSize - 1) / hal.PageSize

	page, err := h.AllocPages(pages)
	if err != nil {
		return nil, fmt.Errorf("cmd/hypercraft: alloc %d pages: %w", pages, err)
	}

	if len(data) > len(page.Bytes) {
		return nil, fmt.Errorf("cmd/hypercraft: image %s (%d bytes) exceeds guest memory (%d bytes)",
			path, len(data), len(page.Bytes))
	}

	copy(page.Bytes, data)

	return page, nil
}

// readGuestMem backs a vcpu.MemReader/vm.MemReader against a single
// flat RAM region, the only memory layout this demo constructs.
func readGuestMem(page *hal.Page, base uint64, gpa uint64, n int) ([]byte, error) {
	if gpa < base || gpa+uint64(n) > base+uint64(len(page.Bytes)) {
		return nil, fmt.Errorf("cmd/hypercraft: guest address %#x (len %d) out of range", gpa, n)
	}

	off := gpa - base

	return page.Bytes[off : off+uint64(n)], nil
}

func runBootX86(args []string) error {
	c, err := parseBootArgs("boot-x86", args)
	if err != nil {
		return err
	}

	stopProfile := maybeStartProfile(c.profile)
	defer stopProfile()

	stopPprof := maybeServePprof(c.pprofAddr)
	defer stopPprof()

	h := hal.DefaultHal{}

	page, err := loadImage(h, c.kernel, c.memSize)
	if err != nil {
		return err
	}
	defer h.FreePages(page)

	entryGPA := uint64(page.HostAddr)

	pt := gpt.New(entryGPA)
	if err := pt.AddRegion(gpt.Region{Name: "ram", Base: entryGPA, Size: uint64(len(page.Bytes))}); err != nil {
		return err
	}

	m, err := x86vm.New(h, pt, entryGPA)
	if err != nil {
		return err
	}
	defer m.Close()

	m.SetMemReader(func(gpa uint64, n int) ([]byte, error) {
		return readGuestMem(page, entryGPA, gpa, n)
	})

	if err := m.InitVcpu(); err != nil {
		return err
	}

	for {
		trap, err := m.Run()
		if err != nil {
			return err
		}

		log.Printf("cmd/hypercraft: boot-x86 trap: %s", trap)

		if trap.Kind == vmmtrap.Unhandled {
			return nil
		}
	}
}

func runBootRiscv(args []string) error {
	c, err := parseBootArgs("boot-riscv", args)
	if err != nil {
		return err
	}

	stopProfile := maybeStartProfile(c.profile)
	defer stopProfile()

	stopPprof := maybeServePprof(c.pprofAddr)
	defer stopPprof()

	h := hal.DefaultHal{}

	page, err := loadImage(h, c.kernel, c.memSize)
	if err != nil {
		return err
	}
	defer h.FreePages(page)

	entryGPA := uint64(page.HostAddr)

	pt := gpt.New(entryGPA)
	if err := pt.AddRegion(gpt.Region{Name: "ram", Base: entryGPA, Size: uint64(len(page.Bytes))}); err != nil {
		return err
	}

	if err := pt.AddRegion(gpt.Region{Name: "plic", Base: plic.Base, Size: plic.WindowSize, MMIO: true}); err != nil {
		return err
	}

	m, err := riscvvm.New(h, pt, entryGPA)
	if err != nil {
		return err
	}
	defer m.Close()

	m.SetMemReader(func(gpa uint64, n int) ([]byte, error) {
		return readGuestMem(page, entryGPA, gpa, n)
	})

	if err := m.InitVcpu(); err != nil {
		return err
	}

	if con, err := console.New(); err != nil {
		log.Printf("cmd/hypercraft: console unavailable, continuing without interactive input: %v", err)
	} else {
		defer con.Close()

		go con.Run(m)
	}

	for {
		trap, err := m.Run()
		if err != nil {
			return err
		}

		switch trap.Kind {
		case vmmtrap.SetTimer:
			log.Printf("cmd/hypercraft: boot-riscv SetTimer(%#x)", trap.Deadline)
			time.Sleep(10 * time.Millisecond)
		default:
			log.Printf("cmd/hypercraft: boot-riscv trap: %s", trap)
		}
	}
}

// maybeStartProfile wires github.com/pkg/profile's CPU profiler around
// the run when -profile is set.
func maybeStartProfile(enabled bool) func() {
	if !enabled {
		return func() {}
	}

	p := profile.Start(profile.CPUProfile, profile.ProfilePath("."))

	return p.Stop
}

// maybeServePprof serves fgprof's wall-clock profiling endpoint, plus a
// /debug/fgprof/report endpoint that captures a short profile and
// renders it with google/pprof's profile package, when -pprof-addr is
// set.
func maybeServePprof(addr string) func() {
	if addr == "" {
		return func() {}
	}

	mux := http.NewServeMux()
	mux.Handle("/debug/fgprof", fgprof.Handler())
	mux.HandleFunc("/debug/fgprof/report", fgprofReportHandler)

	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("cmd/hypercraft: pprof server: %v", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		_ = srv.Shutdown(ctx)
	}
}

func fgprofReportHandler(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer

	stop := fgprof.Start(&buf, fgprof.FormatPprof)

	time.Sleep(5 * time.Second)

	if err := stop(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	prof, err := gprofile.Parse(&buf)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	fmt.Fprint(w, prof.String())
}
