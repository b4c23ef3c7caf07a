package models

// WordPair is a catalog entry as read from an import source, before it
// has an identity in the store.
type WordPair struct {
	Original    string
	Translation string
}
