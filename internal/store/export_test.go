package store

// FastScrypt lowers the scrypt cost of s so tests stay quick.
func FastScrypt(s *ItemFileStore) { s.params = scryptParams{N: 1 << 10, R: 8, P: 1} }
