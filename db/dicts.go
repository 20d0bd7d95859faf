package db

import (
	"database/sql"
	"fmt"
)

// DictType names one of the curated dictionaries the laboratory serves to
// its forms.
type DictType string

const (
	DictAccounts DictType = "accounts"
	DictAssets   DictType = "assets"
	DictPools    DictType = "pools"
)

// DictEntry is one dictionary row: Key is the ledger identifier (account
// address, CODE-ISSUER pair, or pool id), Name the human label.
type DictEntry struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// SaveDict replaces the whole dictionary atomically.
func SaveDict(dbConn *sql.DB, dict DictType, entries []DictEntry) error {
	tx, err := dbConn.Begin()
	if err != nil {
		return fmt.Errorf("starting dict transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM laboratory_dicts WHERE dict = $1", string(dict)); err != nil {
		return fmt.Errorf("clearing dict %s: %w", dict, err)
	}
	for _, entry := range entries {
		_, err := tx.Exec(
			"INSERT INTO laboratory_dicts (dict, key, name) VALUES ($1, $2, $3)",
			string(dict), entry.Key, entry.Name)
		if err != nil {
			return fmt.Errorf("inserting into dict %s: %w", dict, err)
		}
	}
	return tx.Commit()
}

// GetDict returns the dictionary ordered by name for stable form rendering.
func GetDict(dbConn *sql.DB, dict DictType) ([]DictEntry, error) {
	rows, err := dbConn.Query(
		"SELECT key, name FROM laboratory_dicts WHERE dict = $1 ORDER BY name, key",
		string(dict))
	if err != nil {
		return nil, fmt.Errorf("fetching dict %s: %w", dict, err)
	}
	defer rows.Close()

	var entries []DictEntry
	for rows.Next() {
		var entry DictEntry
		if err := rows.Scan(&entry.Key, &entry.Name); err != nil {
			return nil, fmt.Errorf("scanning dict %s: %w", dict, err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
