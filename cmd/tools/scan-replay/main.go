// Package main streams a captured room scan to a floorplan-report instance
// over UDP, simulating a live scanning session by sending progressively
// larger prefixes of the capture.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"net"
	"os"
	"time"
)

var (
	captureFile = flag.String("capture", "", "Capture JSON file to replay (required)")
	target      = flag.String("target", "127.0.0.1:9040", "UDP address of the scan feed listener")
	interval    = flag.Duration("interval", 500*time.Millisecond, "Delay between snapshot messages")
	steps       = flag.Int("steps", 20, "Number of progressive snapshots to send")
	heading     = flag.Bool("heading", false, "Also send synthetic compass headings")
)

// captureDocument mirrors the feed's capture schema loosely; elements pass
// through as raw JSON so the tool stays agnostic of their fields.
type captureDocument struct {
	CapturedAt json.RawMessage   `json:"captured_at,omitempty"`
	Device     json.RawMessage   `json:"device,omitempty"`
	Walls      []json.RawMessage `json:"walls"`
	Doors      []json.RawMessage `json:"doors"`
	Windows    []json.RawMessage `json:"windows"`
	Objects    []json.RawMessage `json:"objects"`
}

type envelope struct {
	Type    string          `json:"type"`
	Degrees float64         `json:"degrees,omitempty"`
	Capture json.RawMessage `json:"capture,omitempty"`
}

func main() {
	flag.Parse()

	if *captureFile == "" {
		flag.Usage()
		os.Exit(1)
	}

	raw, err := os.ReadFile(*captureFile)
	if err != nil {
		log.Fatalf("Failed to read capture file: %v", err)
	}
	var doc captureDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		log.Fatalf("Failed to parse capture file: %v", err)
	}

	conn, err := net.Dial("udp", *target)
	if err != nil {
		log.Fatalf("Failed to dial %s: %v", *target, err)
	}
	defer conn.Close()

	total := len(doc.Walls) + len(doc.Doors) + len(doc.Windows) + len(doc.Objects)
	log.Printf("Replaying %d elements to %s in %d steps", total, *target, *steps)

	for step := 1; step <= *steps; step++ {
		fraction := float64(step) / float64(*steps)
		partial := prefixDocument(doc, fraction)

		payload, err := json.Marshal(partial)
		if err != nil {
			log.Fatalf("Failed to encode partial capture: %v", err)
		}
		msg, err := json.Marshal(envelope{Type: "snapshot", Capture: payload})
		if err != nil {
			log.Fatalf("Failed to encode envelope: %v", err)
		}
		if _, err := conn.Write(msg); err != nil {
			log.Fatalf("Failed to send snapshot %d: %v", step, err)
		}

		if *heading {
			deg := math.Mod(float64(step)*17, 360)
			hm, _ := json.Marshal(envelope{Type: "heading", Degrees: deg})
			if _, err := conn.Write(hm); err != nil {
				log.Fatalf("Failed to send heading: %v", err)
			}
		}

		fmt.Printf("step %d/%d: %d walls, %d doors, %d windows, %d objects\n",
			step, *steps, len(partial.Walls), len(partial.Doors), len(partial.Windows), len(partial.Objects))
		time.Sleep(*interval)
	}

	log.Print("Replay complete")
}

// prefixDocument returns the leading fraction of each element list, so the
// receiving end sees the scan grow the way a live capture would.
func prefixDocument(doc captureDocument, fraction float64) captureDocument {
	cut := func(list []json.RawMessage) []json.RawMessage {
		n := int(math.Ceil(float64(len(list)) * fraction))
		if n > len(list) {
			n = len(list)
		}
		return list[:n]
	}
	return captureDocument{
		CapturedAt: doc.CapturedAt,
		Device:     doc.Device,
		Walls:      cut(doc.Walls),
		Doors:      cut(doc.Doors),
		Windows:    cut(doc.Windows),
		Objects:    cut(doc.Objects),
	}
}
