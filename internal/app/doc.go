// Package app is the application layer - the only component that
// references multiple domain components. It orchestrates the use
// cases: serving leaderboard queries and keeping the stored
// leaderboards fresh.
package app
