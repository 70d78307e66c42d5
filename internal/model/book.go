package model

import "time"

// Book represents a title in the library catalogue together with the
// number of physical copies currently available for borrowing.  The
// Count column is only ever mutated through the ledger's guarded
// decrement/increment so it can never drop below zero.
//
// Fields:
//  ID          – primary key identifier.
//  Title       – book title.
//  Description – free-form description text.
//  Author      – author name.
//  Count       – copies currently available for borrowing (>= 0).
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Book struct {
    ID          uint64    // books.id
    Title       string    // books.title
    Description string    // books.description
    Author      string    // books.author
    Count       int       // books.count
    CreatedAt   time.Time // books.created_at
    UpdatedAt   time.Time // books.updated_at
}

// Category is a label that can be attached to any number of books via
// the book_categories join table.
//
// Fields:
//  ID          – primary key identifier.
//  Title       – category title.
//  Description – free-form description text.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Category struct {
    ID          uint64    // categories.id
    Title       string    // categories.title
    Description string    // categories.description
    CreatedAt   time.Time // categories.created_at
    UpdatedAt   time.Time // categories.updated_at
}
