package model

import "time"

// Action tags stored on borrow records.  A record starts as BORROW and
// flips to RETURN when it is closed.
const (
    ActionBorrow = "BORROW"
    ActionReturn = "RETURN"
)

// BorrowRecord is one entry in a user's borrow history for a book.
// A record is "open" while ReturnedAt is nil, meaning the user still
// holds a copy of the book.  For a given (user, book) pair at most one
// open record may exist at any time.
//
// Fields:
//  ID         – primary key identifier.
//  UserID     – user who borrowed the book.
//  BookID     – book that was borrowed.
//  BorrowedAt – when the copy was checked out.
//  ReturnedAt – when the copy came back (nil while still out).
//  Action     – BORROW or RETURN.
type BorrowRecord struct {
    ID         uint64     // borrow_records.id
    UserID     uint64     // borrow_records.user_id
    BookID     uint64     // borrow_records.book_id
    BorrowedAt time.Time  // borrow_records.borrowed_at
    ReturnedAt *time.Time // borrow_records.returned_at (nullable)
    Action     string     // borrow_records.action
}

// Open reports whether the record still represents a checked-out copy.
func (r BorrowRecord) Open() bool { return r.ReturnedAt == nil }

// Rating is a 1-5 score a user gives a book.  Ratings may only be
// created while the user holds an open borrow record for the book.
// A user may rate the same book more than once; readers aggregate.
type Rating struct {
    ID        uint64    // ratings.id
    UserID    uint64    // ratings.user_id
    BookID    uint64    // ratings.book_id
    Value     int       // ratings.value (1..5)
    CreatedAt time.Time // ratings.created_at
}
