package models

// StringSlice is a []string that serializes as JSON in the database.
type StringSlice []string
