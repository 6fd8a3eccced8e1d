// Package render turns an extraction record into user-facing artifacts: a
// terminal layout, a pretty-printed JSON document, and flat CSV/XLSX tables.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/zkjiang/autoabstract/internal/record"
	"github.com/zkjiang/autoabstract/internal/schema"
)

// Text writes a human-readable view of rec to w. The default configuration
// gets a fixed injury-surveillance layout; custom configurations get a
// generic layout driven by the record's own keys.
func Text(w io.Writer, rec *record.Record, cfg schema.Config) error {
	title := "Structured Output"
	if cfg.IsCustom {
		title = "Custom Abstraction"
	}
	fmt.Fprintf(w, "=== %s ===\n\n", title)

	if missing := rec.MissingFields(); len(missing) > 0 {
		fmt.Fprintln(w, "MISSING INFORMATION DETECTED")
		fmt.Fprintf(w, "The following fields could not be confidently extracted: %s\n\n", strings.Join(missing, ", "))
	}

	if cfg.IsCustom {
		writeGenericLayout(w, rec)
	} else {
		writeInjuryLayout(w, rec)
	}
	return nil
}

func writeInjuryLayout(w io.Writer, rec *record.Record) {
	fmt.Fprintln(w, "BRIEF SUMMARY")
	fmt.Fprintf(w, "  %s%s\n\n", rec.String("briefSummary"), missingMark(rec, "briefSummary"))

	fmt.Fprintln(w, "VISIT INFO")
	writeField(w, rec, "Date", "visitDate")
	writeField(w, rec, "Time", "visitTime")
	writeField(w, rec, "Disposition", "disposition")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "PATIENT")
	writeField(w, rec, "Age", "patientAge")
	writeField(w, rec, "Gender", "patientGender")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "INCIDENT CHARACTERISTICS")
	writeField(w, rec, "Location", "incidentLocation")
	writeField(w, rec, "Mechanism", "injuryMechanism")
	writeField(w, rec, "Intent", "intent")
	fmt.Fprintln(w)

	fmt.Fprintf(w, "DIAGNOSES%s\n", missingMark(rec, "diagnoses"))
	diagnoses := rec.Strings("diagnoses")
	if len(diagnoses) == 0 {
		fmt.Fprintln(w, "  No specific diagnoses extracted.")
		return
	}
	for _, d := range diagnoses {
		fmt.Fprintf(w, "  - %s\n", d)
	}
}

func writeGenericLayout(w io.Writer, rec *record.Record) {
	simple, complex := rec.Partition()

	for _, key := range simple {
		value := rec.String(key)
		if b, ok := rec.Bool(key); ok {
			if b {
				value = "Yes"
			} else {
				value = "No"
			}
		} else if value == "" {
			value = "N/A"
		}
		fmt.Fprintf(w, "%s: %s%s\n", label(key), value, missingMark(rec, key))
	}
	if len(simple) > 0 && len(complex) > 0 {
		fmt.Fprintln(w)
	}

	for i, key := range complex {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s%s\n", label(key), missingMark(rec, key))
		items := rec.Strings(key)
		switch {
		case items == nil:
			// Nested object, not a list.
			fmt.Fprintf(w, "  %s\n", rec.String(key))
		case len(items) == 0:
			fmt.Fprintln(w, "  None")
		default:
			for _, item := range items {
				fmt.Fprintf(w, "  - %s\n", item)
			}
		}
	}
}

func writeField(w io.Writer, rec *record.Record, name, key string) {
	fmt.Fprintf(w, "  %-12s %s%s\n", name+":", rec.String(key), missingMark(rec, key))
}

func missingMark(rec *record.Record, key string) string {
	if rec.Missing(key) {
		return " [missing]"
	}
	return ""
}

// label turns a record key into a display label: underscores become spaces
// and each word is capitalized.
func label(key string) string {
	words := strings.Split(strings.ReplaceAll(key, "_", " "), " ")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
