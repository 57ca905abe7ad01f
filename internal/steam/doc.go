// Package steam reads facts about the local Steam installation: where it is
// installed and which account logged in most recently. Files are parsed with
// the VDF (KeyValues) parser; nothing here writes into the Steam tree.
package steam
