package models

import (
	"github.com/ethereum/go-ethereum/common"
	"math/big"
	"strconv"
)

type BookStatus uint8

const (
	BookAvailable BookStatus = iota
	BookCheckedOut
)

func (s BookStatus) String() string {
	switch s {
	case BookAvailable:
		return "Available"
	case BookCheckedOut:
		return "CheckedOut"
	default:
		return strconv.Itoa(int(s))
	}
}

// Book mirrors the contract's book tuple. Field order must match the ABI
// components (id, isbn, title, author, owner, status), the decoder copies
// positionally.
type Book struct {
	Id     *big.Int
	Isbn   string
	Title  string
	Author string
	Owner  common.Address
	Status uint8
}

func (b Book) StatusName() string {
	return BookStatus(b.Status).String()
}

// Member mirrors the contract's member tuple (id, address, nickname, role, status).
type Member struct {
	Id       *big.Int
	Addr     common.Address
	Nickname string
	Role     uint8
	Status   uint8
}

// FilterBooks returns the books accepted by match, in contract order.
func FilterBooks(books []Book, match func(Book) bool) []Book {
	var out []Book
	for _, b := range books {
		if match(b) {
			out = append(out, b)
		}
	}
	return out
}

func ByIsbn(isbn string) func(Book) bool {
	return func(b Book) bool { return b.Isbn == isbn }
}

func ByAuthor(author string) func(Book) bool {
	return func(b Book) bool { return b.Author == author }
}

func ByTitle(title string) func(Book) bool {
	return func(b Book) bool { return b.Title == title }
}
