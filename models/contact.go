package models

import (
	"fmt"
	"strings"
)

// OfficialContact is the NCPA's published contact information. It is a
// fixed fact table, never derived from the crawl, and is surfaced whenever
// a question asks for contact details or the helpline.
type OfficialContact struct {
	Phone    string
	Fax      string
	Email    string
	Website  string
	Address  string
	Helpline string
}

// NCPAContact holds the authority's official contact details.
var NCPAContact = OfficialContact{
	Phone:    "+94 11 277 8911",
	Fax:      "+94 11 277 8915",
	Email:    "ncpa@childprotection.gov.lk",
	Website:  "https://childprotection.gov.lk/",
	Address:  "No. 330, Thalawathugoda Road, Madiwela, Sri Jayawardenepura Kotte, Sri Lanka",
	Helpline: "1929 (24-hour child helpline, free of charge from any network)",
}

// ContextEntry renders the contact record as a retrieval context entry.
func (c OfficialContact) ContextEntry() ContextEntry {
	var b strings.Builder
	fmt.Fprintf(&b, "National Child Protection Authority official contact information. ")
	fmt.Fprintf(&b, "Phone: %s. Fax: %s. Email: %s. Website: %s. Address: %s. Helpline: %s.",
		c.Phone, c.Fax, c.Email, c.Website, c.Address, c.Helpline)
	return ContextEntry{
		SourceURL:  c.Website,
		SourceType: SourceOfficial,
		Text:       b.String(),
	}
}
