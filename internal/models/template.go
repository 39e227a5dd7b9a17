package models

// GuidelineTemplate is a named, reusable set of rewrite guidelines.
type GuidelineTemplate struct {
	Name string `json:"name" yaml:"name"`
	Body string `json:"body" yaml:"body"`
}
