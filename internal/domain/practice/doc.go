// Package practice implements the practice-session engine: a shuffled run
// through a flashcard set under one discipline, with answers graded and
// rewards reported to a Rewarder.
//
// The engine is pure. It never touches storage or the clock; callers load a
// SessionState, pass it in, and persist whatever state the engine returns.
// A nil returned state means the session finished and must be discarded.
package practice
