// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command symprofreport symbolicates a perf.data sampling profile and
// prints a report: flat, leaf-up ("callers of"), root-down ("callees
// of"), a rendered flame graph, or (format "dump") the file's raw,
// unsymbolicated records for debugging the event source itself.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/aclements/go-symprof/aggregate"
	"github.com/aclements/go-symprof/orchestrator"
	"github.com/aclements/go-symprof/perffile"
	"github.com/aclements/go-symprof/printer"
)

func main() {
	var (
		flagInput            = flag.String("i", "perf.data", "read profile from `file`")
		flagFormat           = flag.String("format", "flat", "report `format`; one of: flat, leafup, rootdown, flamegraph, dump")
		flagShowLines        = flag.Bool("lines", false, "show function-start line numbers")
		flagModulePath       = flag.String("modulepath", "", "colon-separated `dirs` searched for kernel modules")
		flagPIDs             = flag.String("pids", "", "comma-separated `pids` to include; empty means all")
		flagIncludeTemplates = flag.Bool("templates", false, "keep C++ template arguments in demangled names")
		flagQuitOnError      = flag.Bool("quit-on-error", false, "abort if a kernel module cannot be found")
		flagDumpOrder        = flag.String("dump-order", "time", "record `order` for -format dump; one of: file, time, causal")
	)
	flag.Parse()
	if flag.NArg() > 0 {
		flag.Usage()
		os.Exit(1)
	}

	if *flagFormat == "dump" {
		order, ok := parseDumpOrder(*flagDumpOrder)
		if !ok {
			flag.Usage()
			os.Exit(1)
		}
		if err := dumpRecords(os.Stdout, *flagInput, order); err != nil {
			log.Fatal(err)
		}
		return
	}

	pidFilter, err := parsePIDs(*flagPIDs)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg := orchestrator.Config{
		DataFile:         *flagInput,
		ShowLines:        *flagShowLines,
		ModulePath:       orchestrator.ParseModulePath(*flagModulePath),
		PIDFilter:        pidFilter,
		IncludeTemplates: *flagIncludeTemplates,
		QuitOnError:      *flagQuitOnError,
	}

	o := orchestrator.New(cfg)
	aggs, err := o.Run()
	if err != nil {
		log.Fatal(err)
	}

	if err := writeReport(os.Stdout, *flagFormat, aggs, *flagShowLines); err != nil {
		log.Fatal(err)
	}
}

func writeReport(w *os.File, format string, aggs []*aggregate.Aggregation, showLines bool) error {
	switch format {
	case "flat":
		return printer.Flat(w, aggs, showLines)
	case "leafup":
		return printer.LeafUp(w, aggs, showLines)
	case "rootdown":
		return printer.RootDown(w, aggs, showLines)
	case "flamegraph":
		return printer.FlameGraph(w, aggs)
	}
	return fmt.Errorf("unknown -format %q", format)
}

// dumpRecords prints the raw header, metadata, and record stream of
// the perf.data file at path, bypassing symbolication entirely. It
// exists to debug the event source (perffile/perfevents) independent
// of the rest of the pipeline.
func dumpRecords(w *os.File, path string, order perffile.RecordsOrder) error {
	f, err := perffile.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Fprintf(w, "%+v\n", f)

	fmt.Fprintf(w, "events:\n")
	for _, event := range f.Events {
		fmt.Fprintf(w, "  %p=%+v\n", event, *event)
	}

	if f.Meta.BuildIDs != nil {
		fmt.Fprintf(w, "build IDs:\n")
		for _, bid := range f.Meta.BuildIDs {
			fmt.Fprintf(w, "  %v\n", bid)
		}
	}

	for _, hdr := range []struct {
		label string
		val   interface{}
	}{
		{"hostname", f.Meta.Hostname},
		{"OS release", f.Meta.OSRelease},
		{"version", f.Meta.Version},
		{"arch", f.Meta.Arch},
		{"CPUs online", f.Meta.CPUsOnline},
		{"CPUs available", f.Meta.CPUsAvail},
		{"CPU desc", f.Meta.CPUDesc},
		{"CPUID", f.Meta.CPUID},
		{"total memory", f.Meta.TotalMem},
		{"cmdline", f.Meta.CmdLine},
		{"core groups", f.Meta.CoreGroups},
		{"thread groups", f.Meta.ThreadGroups},
		{"NUMA nodes", f.Meta.NUMANodes},
		{"PMU mappings", f.Meta.PMUMappings},
		{"groups", f.Meta.Groups},
	} {
		if hdr.val == reflect.Zero(reflect.ValueOf(hdr.val).Type()) {
			continue
		}
		fmt.Fprintf(w, "%s: %v\n", hdr.label, hdr.val)
	}

	rs := f.Records(order)
	for rs.Next() {
		fmt.Fprintf(w, "%v %+v\n", rs.Record.Type(), rs.Record)
	}
	if rs.Malformed > 0 {
		fmt.Fprintf(w, "malformed records skipped: %d\n", rs.Malformed)
	}
	return rs.Err()
}

func parseDumpOrder(order string) (perffile.RecordsOrder, bool) {
	switch order {
	case "file":
		return perffile.RecordsFileOrder, true
	case "time":
		return perffile.RecordsTimeOrder, true
	case "causal":
		return perffile.RecordsCausalOrder, true
	}
	return 0, false
}

func parsePIDs(s string) (map[int]bool, error) {
	if s == "" {
		return nil, nil
	}
	out := make(map[int]bool)
	for _, f := range strings.Split(s, ",") {
		pid, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("invalid -pids value %q: %w", f, err)
		}
		out[pid] = true
	}
	return out, nil
}
