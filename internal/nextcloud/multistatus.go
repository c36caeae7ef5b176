package nextcloud

import (
	"encoding/xml"
	"time"
)

// multistatus models the subset of a PROPFIND 207 response the client needs.
// Properties live under propstat>prop; servers omit the ones a resource does
// not have, so missing elements simply leave the zero value.
type multistatus struct {
	XMLName   xml.Name      `xml:"DAV: multistatus"`
	Responses []davResponse `xml:"response"`
}

type davResponse struct {
	Href          string    `xml:"href"`
	LastModified  davTime   `xml:"propstat>prop>getlastmodified"`
	ETag          string    `xml:"propstat>prop>getetag"`
	ContentType   string    `xml:"propstat>prop>getcontenttype"`
	ContentLength int64     `xml:"propstat>prop>getcontentlength"`
	Collection    *struct{} `xml:"propstat>prop>resourcetype>collection"`
}

func (r *davResponse) isCollection() bool {
	return r.Collection != nil
}

// davTime parses the date formats WebDAV servers are known to emit for
// getlastmodified. An unrecognized format leaves the zero time rather than
// failing the whole listing.
type davTime struct {
	time.Time
}

var davTimeFormats = []string{
	time.RFC1123,
	"Mon, 02 Jan 2006 15:04:05 -0700",
	"Mon Jan 2 15:04:05 -0700 MST 2006",
	"2006-01-02T15:04:05Z07:00",
}

func (t *davTime) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var raw string
	if err := d.DecodeElement(&raw, &start); err != nil {
		return err
	}
	for _, format := range davTimeFormats {
		if parsed, err := time.Parse(format, raw); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return nil
}

// parseMultistatus decodes a 207 body. A body that is not well-formed XML,
// or whose root element is not DAV: multistatus, yields a ParseError.
func parseMultistatus(data []byte) (*multistatus, error) {
	var ms multistatus
	if err := xml.Unmarshal(data, &ms); err != nil {
		return nil, &ParseError{Err: err}
	}
	return &ms, nil
}
