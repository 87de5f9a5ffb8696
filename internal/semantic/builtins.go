package semantic

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Template bodies for the built-in renderers. Fragment-level only; page
// chrome belongs to the consuming UI.
const (
	scalarTemplate = `<span class="sem-value sem-{{.Directive}}{{if .Diff}} sem-diff-{{.Diff}}{{end}}">{{.Display}}</span>`
	structTemplate = `<table class="sem-struct{{if .Diff}} sem-diff-{{.Diff}}{{end}}">{{range .Items}}<tr><th title="{{.Doc}}">{{.Key}}</th><td>{{.HTML}}</td></tr>{{end}}</table>`

	// repeatedTemplate is the single shared template for repeated values.
	repeatedTemplate = `<ul class="sem-list">{{range .Children}}<li>{{.HTML}}</li>{{end}}{{if .More}}<li class="sem-fetch-more" data-remaining="{{.Remaining}}">Fetch more</li>{{end}}</ul>`
)

// NewDefaultRegistry returns a registry populated with the built-in
// renderers. Callers register or override domain-specific types on top.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(Entry{Directive: "bytes", Template: scalarTemplate, Format: formatBytesValue},
		"RDFBytes", "Bytes")
	r.Register(Entry{Directive: "json", Template: scalarTemplate, Format: formatJSONValue},
		"JSONBlob", "ZippedJSONBytes")
	r.Register(Entry{Directive: "timestamp", Template: scalarTemplate, Format: formatTimestamp},
		"RDFDatetime", "Timestamp")
	r.Register(Entry{Directive: "duration", Template: scalarTemplate, Format: formatDuration},
		"DurationSeconds", "Duration")
	r.Register(Entry{Directive: "size", Template: scalarTemplate, Format: formatByteSize},
		"ByteSize")
	r.Register(Entry{Directive: "digest", Template: scalarTemplate, Format: formatHashDigest},
		"HashDigest")
	r.Register(Entry{Directive: "primitive", Template: scalarTemplate},
		"RDFString", "RDFInteger", "RDFBool")
	return r
}

// formatBytesValue decodes a base64-encoded opaque byte field for display.
// Malformed input renders inline and never breaks the surrounding page.
func formatBytesValue(v *TaggedValue) string {
	raw := v.String()
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return fmt.Sprintf("base64error(%v):%s", err, raw)
	}
	return string(decoded)
}

// formatJSONValue pretty-prints an embedded JSON document.
func formatJSONValue(v *TaggedValue) string {
	raw := v.String()
	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return fmt.Sprintf("jsonerror(%v):%s", err, raw)
	}
	pretty, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Sprintf("jsonerror(%v):%s", err, raw)
	}
	return string(pretty)
}

// formatTimestamp renders microseconds since the epoch as RFC 3339.
func formatTimestamp(v *TaggedValue) string {
	micros, ok := v.Value.(float64)
	if !ok {
		parsed, err := strconv.ParseInt(v.String(), 10, 64)
		if err != nil {
			return fmt.Sprintf("timestamperror(%v):%s", err, v.String())
		}
		micros = float64(parsed)
	}
	if micros == 0 {
		return ""
	}
	return time.UnixMicro(int64(micros)).UTC().Format(time.RFC3339)
}

func formatDuration(v *TaggedValue) string {
	seconds, err := strconv.ParseInt(v.String(), 10, 64)
	if err != nil {
		return fmt.Sprintf("durationerror(%v):%s", err, v.String())
	}
	return StringifySeconds(seconds)
}

func formatByteSize(v *TaggedValue) string {
	n, err := strconv.ParseInt(v.String(), 10, 64)
	if err != nil {
		return fmt.Sprintf("sizeerror(%v):%s", err, v.String())
	}
	return StringifyBytes(n)
}

// formatHashDigest renders a base64-encoded digest as lowercase hex.
func formatHashDigest(v *TaggedValue) string {
	raw := v.String()
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return fmt.Sprintf("base64error(%v):%s", err, raw)
	}
	return hex.EncodeToString(decoded)
}
