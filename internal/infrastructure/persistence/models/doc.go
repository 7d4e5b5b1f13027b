// Package models contains the GORM persistence models for the reconciliation
// store. Models map between database rows and domain types; they never carry
// behavior beyond conversion.
package models
