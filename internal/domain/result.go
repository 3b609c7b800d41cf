package domain

import "time"

// Result collections written by the scan worker, keyed by task id.
const (
	ResultCert     = "cert"
	ResultDomain   = "domain"
	ResultFileLeak = "fileleak"
	ResultIP       = "ip"
	ResultService  = "service"
	ResultSite     = "site"
	ResultURL      = "url"
)

// ResultCollections lists every collection a cascading task delete clears.
var ResultCollections = []string{
	ResultCert,
	ResultDomain,
	ResultFileLeak,
	ResultIP,
	ResultService,
	ResultSite,
	ResultURL,
}

func IsResultCollection(name string) bool {
	for _, c := range ResultCollections {
		if c == name {
			return true
		}
	}
	return false
}

// ResultRecord is the shared row shape of the result collections. The
// payload is opaque to the control plane. Indexes are created per table by
// the migrations since index names are global.
type ResultRecord struct {
	ID         string    `gorm:"primaryKey;type:uuid" json:"_id"`
	TaskID     string    `gorm:"type:uuid;not null" json:"task_id"`
	Data       JSONB     `gorm:"type:jsonb" json:"data"`
	SaveDate   time.Time `gorm:"not null" json:"save_date"`
	UpdateDate time.Time `gorm:"not null" json:"update_date"`
}
