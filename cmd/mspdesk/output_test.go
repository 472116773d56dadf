package main

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/baiirun/mspdesk/internal/model"
)

type sample struct {
	Name  string `json:"name"`
	Code  string `json:"code"`
	Count int    `json:"count"`
}

func TestEmit(t *testing.T) {
	data := sample{Name: "Acme", Code: "123", Count: 2}
	tbl := table{headers: []string{"ID", "NAME"}}
	tbl.add("1", "Acme")

	tests := []struct {
		format string
		want   string
	}{
		{"table", "ID  NAME\n1   Acme\n"},
		{"json", "{\n  \"name\": \"Acme\",\n  \"code\": \"123\",\n  \"count\": 2\n}\n"},
		// Field order follows the json tags; numeric-looking strings stay quoted.
		{"yaml", "name: Acme\ncode: \"123\"\ncount: 2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			if err := emit(&buf, tt.format, data, tbl); err != nil {
				t.Fatalf("emit: %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("got:\n%s\nwant:\n%s", buf.String(), tt.want)
			}
		})
	}
}

func TestEmit_EmptyTable(t *testing.T) {
	var buf bytes.Buffer
	if err := emit(&buf, "table", []model.Ticket{}, ticketTable(nil)); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "No results.\n" {
		t.Errorf("got %q", buf.String())
	}

	buf.Reset()
	if err := emit(&buf, "json", []model.Ticket{}, table{}); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("json for empty list = %q, want []", buf.String())
	}
}

func TestWriteYAML_NestedBlockStyle(t *testing.T) {
	var buf bytes.Buffer
	in := map[string]any{"tags": []string{"a", "b"}}
	if err := writeYAML(&buf, in); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "tags:\n  - a\n  - b\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestFormatters(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"money", money(1234.5), "$1,234.50"},
		{"money zero", money(0), "$0.00"},
		{"nil id", idOrDash(nil), "-"},
		{"empty", orDash(""), "-"},
		{"truncate short", truncate("short", 10), "short"},
		{"truncate collapses space", truncate("a\n  b", 10), "a b"},
		{"truncate long", truncate("abcdefghijk", 5), "abcd…"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestEnumFlag(t *testing.T) {
	var v model.Visibility
	f := visibilityFlag(&v)
	if v != model.VisibilityInternal || f.String() != "internal" {
		t.Errorf("default = %q", v)
	}
	if f.Type() != "visibility" {
		t.Errorf("Type() = %q", f.Type())
	}
	if err := f.Set("PUBLIC"); err != nil || v != model.VisibilityPublic {
		t.Errorf("Set(PUBLIC) = %v, value %q", err, v)
	}
	err := f.Set("secret")
	if err == nil || !strings.Contains(err.Error(), "internal, public") {
		t.Errorf("Set(secret) = %v", err)
	}
	if v != model.VisibilityPublic {
		t.Error("a rejected value changed the flag")
	}

	var s model.TicketStatus
	if err := statusFlag(&s).Set("qa"); err != nil || s != model.TicketStatusQA {
		t.Errorf("status Set(qa) = %v, %q", err, s)
	}
}

func TestParseIDs(t *testing.T) {
	tests := []struct {
		args    []string
		want    []int64
		wantErr bool
	}{
		{[]string{"1,2", "3"}, []int64{1, 2, 3}, false},
		{[]string{"#4"}, []int64{4}, false},
		{[]string{"1,,2"}, []int64{1, 2}, false},
		{[]string{"x"}, nil, true},
		{[]string{"0"}, nil, true},
	}
	for _, tt := range tests {
		got, err := parseIDs(tt.args)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseIDs(%v) err = %v", tt.args, err)
			continue
		}
		if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseIDs(%v) = %v, want %v", tt.args, got, tt.want)
		}
	}
}
