/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package tables keeps the state of every live tabletop in memory: the
// registry of tables, the elements and icon packs of each table, and the
// processor that applies live updates and hands accepted ones to the
// broadcast layer.
package tables
