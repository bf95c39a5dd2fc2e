// Package inventory provides access to the network device inventory:
// nodes, their live status, interfaces, and collected metrics.
//
// The Store interface abstracts the backing datastore. MemoryStore serves
// tests and small installs; SQLiteStore persists the inventory with WAL
// mode enabled for concurrent readers. Policy evaluation consumes node
// documents produced by NodeDocument, which flattens a node and its
// associated data into the JSON-like shape the rule engine traverses.
package inventory
