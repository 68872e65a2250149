// Package domain defines the core entities of Study Ace: users, flashcard
// sets and their cards, the gamification ledger and the daily challenge.
//
// Entities validate themselves and carry no persistence or transport
// concerns. Algorithms that operate on them live in subpackages
// (similarity, practice, gamification).
package domain
