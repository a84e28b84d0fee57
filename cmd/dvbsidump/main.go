// Command dvbsidump decodes an MPEG-TS capture file and prints the PAT,
// NIT, SDT, and EIT tables it finds on their well-known PIDs.
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/spf13/pflag"

	"github.com/snapetech/dvbsi/internal/dvbmetrics"
	"github.com/snapetech/dvbsi/internal/psi"
	"github.com/snapetech/dvbsi/internal/section"
	"github.com/snapetech/dvbsi/internal/tspacket"
)

const (
	pidPAT uint16 = 0x0000
	pidNIT uint16 = 0x0010
	pidSDT uint16 = 0x0011
	pidEIT uint16 = 0x0012
)

func main() {
	capturePath := pflag.StringP("capture", "c", "", "path to a raw MPEG-TS capture file")
	strict := pflag.Bool("strict", false, "reject sections whose CRC32 does not match")
	metricsAddr := pflag.String("metrics-addr", "", "optional address to serve Prometheus metrics on (e.g. :9115)")
	pflag.Parse()

	if *capturePath == "" {
		log.Fatal("dvbsidump: --capture is required")
	}

	buf, err := os.ReadFile(*capturePath)
	if err != nil {
		log.Fatalf("dvbsidump: read capture: %v", err)
	}

	metrics := dvbmetrics.NewMetrics()
	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		go func() {
			log.Printf("dvbsidump: serving metrics on %s", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				log.Printf("dvbsidump: metrics server: %v", err)
			}
		}()
	}

	packets := tspacket.Parse(buf, 0, len(buf), -1)
	log.Printf("dvbsidump: parsed %d packets from %s", len(packets), *capturePath)

	dumpTable(packets, pidPAT, psi.ClassPAT, metrics, *strict)
	dumpTable(packets, pidNIT, psi.ClassNIT, metrics, *strict)
	dumpTable(packets, pidSDT, psi.ClassSDT, metrics, *strict)
	dumpTable(packets, pidEIT, psi.ClassEIT, metrics, *strict)
}

func dumpTable(packets []tspacket.TransportPacket, pid uint16, class psi.PIDClass, metrics *dvbmetrics.Metrics, strict bool) {
	payload := section.FirstSectionPayload(packets, pid)
	if len(payload) == 0 {
		log.Printf("dvbsidump: PID 0x%04x: no section payload found", pid)
		return
	}

	var table *psi.Table
	var err error
	if strict {
		table, err = psi.DecodeStrict(payload, class)
	} else {
		table, err = metrics.DecodeSection(payload, class)
	}
	if err != nil {
		log.Printf("dvbsidump: PID 0x%04x: decode: %v", pid, err)
		return
	}
	printTable(table)
}

func printTable(table *psi.Table) {
	fmt.Printf("=== %s (crc_valid=%v) ===\n", table.Kind, table.Header.CRC32Valid)
	switch table.Kind {
	case psi.KindPAT:
		pat := table.PAT
		if nitPID, ok := pat.NITPID(); ok {
			fmt.Printf("  NIT PID: 0x%04x\n", nitPID)
		}
		for _, p := range pat.Programs {
			fmt.Printf("  program %d -> PID 0x%04x\n", p.ProgramNumber, p.PID)
		}
	case psi.KindNIT:
		nit := table.NIT
		fmt.Printf("  network_name=%q\n", nit.NetworkName)
		for _, ts := range nit.TransportStreams {
			fmt.Printf("  transport_stream %d (onid %d): %d services\n", ts.TransportStreamID, ts.OriginalNetworkID, len(ts.Services))
		}
	case psi.KindSDT:
		sdt := table.SDT
		for _, s := range sdt.Services {
			fmt.Printf("  service %d: %q / %q (%s)\n", s.ServiceID, s.ProviderName, s.ServiceName, s.ServiceType)
		}
	case psi.KindEIT:
		eit := table.EIT
		for _, ev := range eit.Events {
			name := ""
			if ev.ShortEvent != nil {
				name = ev.ShortEvent.EventName
			}
			fmt.Printf("  event %d: %q starts %s (%s)\n", ev.EventID, name, ev.StartTime, ev.Duration)
		}
	}
}
