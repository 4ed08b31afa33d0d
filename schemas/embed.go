// Package schemas embeds the JSON Schema documents shipped with the service.
package schemas

import "embed"

// FS holds every *.schema.json file in this directory.
//
//go:embed *.schema.json
var FS embed.FS

// Schema file names.
const (
	USAJobsItem = "usajobs_item.schema.json"
	JobRecord   = "job_record.schema.json"
)

// MustRead returns the named schema document or panics if it is not embedded.
func MustRead(name string) []byte {
	data, err := FS.ReadFile(name)
	if err != nil {
		panic(err)
	}
	return data
}
