package config

//go:generate go tool go-enum --marshal --names

// Presentation of resolved styles and compiled rules.
// ENUM(text, yaml)
type OutputFmt int

// Ext returns file extension matching output format.
func (o OutputFmt) Ext() string {
	switch o {
	case OutputFmtYaml:
		return ".yaml"
	default:
		return ".txt"
	}
}
