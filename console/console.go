package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"github.com/cryptolib/cryptolib/chain"
	"github.com/cryptolib/cryptolib/conf"
	"github.com/cryptolib/cryptolib/models"
	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
	"io"
	"math/big"
	"strings"
)

// Library is the contract surface the console drives. *chain.Client implements it.
type Library interface {
	Wallet() common.Address
	Books(ctx context.Context) ([]models.Book, error)
	CheckedOutBooks(ctx context.Context, member common.Address) ([]models.Book, error)
	MemberByAddress(ctx context.Context, member common.Address) (*models.Member, error)
	BuildTransaction(ctx context.Context, method string, args ...interface{}) (*chain.PendingTransaction, error)
	SignAndSubmit(ctx context.Context, p *chain.PendingTransaction) (common.Hash, error)
}

const menu = `
Crypto Library
1. Search by ISBN
2. Search by Author
3. Search by Title
4. Check-Out Book
5. Check-In Book
6. View Account
7. Join Library
8. Exit`

type Console struct {
	lib        Library
	reader     *bufio.Reader
	out        io.Writer
	submitJoin bool
}

func New(lib Library, in io.Reader, out io.Writer, conf *conf.Conf) *Console {
	return &Console{
		lib:        lib,
		reader:     bufio.NewReader(in),
		out:        out,
		submitJoin: conf.SubmitJoin,
	}
}

// Run shows the menu and dispatches one action per selection until "8" or
// end of input. A failed action is reported and the menu shown again.
func (c *Console) Run(ctx context.Context) error {
	for {
		fmt.Fprintln(c.out, menu)
		choice, err := c.prompt("Enter selection (1-8): ")
		if err != nil {
			return endOfInput(err)
		}

		switch choice {
		case "1":
			err = c.searchByIsbn(ctx)
		case "2":
			err = c.searchByAuthor(ctx)
		case "3":
			err = c.searchByTitle(ctx)
		case "4":
			err = c.checkout(ctx)
		case "5":
			err = c.checkin(ctx)
		case "6":
			err = c.viewAccount(ctx)
		case "7":
			err = c.joinLibrary(ctx)
		case "8":
			return nil
		default:
			fmt.Fprintln(c.out, "Invalid selection, please try again.")
			continue
		}

		if errors.Is(err, io.EOF) {
			return endOfInput(err)
		}
		if err != nil {
			log.WithFields(log.Fields{
				"selection": choice,
				"error":     err,
			}).Warn("Action failed")
			fmt.Fprintf(c.out, "Error: %v\n", err)
		}
	}
}

func endOfInput(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// prompt writes label and reads one trimmed line of any length. A final line
// without a newline is still returned; io.EOF is reported once nothing is left.
func (c *Console) prompt(label string) (string, error) {
	fmt.Fprint(c.out, label)
	line, err := c.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (c *Console) promptBookID(label string) (*big.Int, error) {
	raw, err := c.prompt(label)
	if err != nil {
		return nil, err
	}
	id, ok := new(big.Int).SetString(raw, 10)
	if !ok || id.Sign() < 0 {
		return nil, fmt.Errorf("invalid book id %q", raw)
	}
	return id, nil
}

// searchBooks always re-reads the whole collection before filtering.
func (c *Console) searchBooks(ctx context.Context, match func(models.Book) bool) ([]models.Book, error) {
	books, err := c.lib.Books(ctx)
	if err != nil {
		return nil, err
	}
	return models.FilterBooks(books, match), nil
}

func (c *Console) searchByIsbn(ctx context.Context) error {
	isbn, err := c.prompt("Enter the ISBN of the book: ")
	if err != nil {
		return err
	}
	books, err := c.searchBooks(ctx, models.ByIsbn(isbn))
	if err != nil {
		return err
	}
	for _, b := range books {
		fmt.Fprintf(c.out, "Title: %s, Author: %s, Status: %s\n", b.Title, b.Author, b.StatusName())
	}
	return nil
}

func (c *Console) searchByAuthor(ctx context.Context) error {
	author, err := c.prompt("Enter the author name: ")
	if err != nil {
		return err
	}
	books, err := c.searchBooks(ctx, models.ByAuthor(author))
	if err != nil {
		return err
	}
	for _, b := range books {
		fmt.Fprintf(c.out, "Title: %s, ISBN: %s, Status: %s\n", b.Title, b.Isbn, b.StatusName())
	}
	return nil
}

func (c *Console) searchByTitle(ctx context.Context) error {
	title, err := c.prompt("Enter the title of the book: ")
	if err != nil {
		return err
	}
	books, err := c.searchBooks(ctx, models.ByTitle(title))
	if err != nil {
		return err
	}
	for _, b := range books {
		fmt.Fprintf(c.out, "Author: %s, ISBN: %s, Status: %s\n", b.Author, b.Isbn, b.StatusName())
	}
	return nil
}

func (c *Console) submit(ctx context.Context, method string, args ...interface{}) error {
	p, err := c.lib.BuildTransaction(ctx, method, args...)
	if err != nil {
		return err
	}
	hash, err := c.lib.SignAndSubmit(ctx, p)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Transaction hash: %s\n", hash.Hex())
	return nil
}

func (c *Console) checkout(ctx context.Context) error {
	id, err := c.promptBookID("Enter the book ID to check out: ")
	if err != nil {
		return err
	}
	return c.submit(ctx, "checkoutBook", id)
}

func (c *Console) checkin(ctx context.Context) error {
	id, err := c.promptBookID("Enter the book ID to check in: ")
	if err != nil {
		return err
	}
	return c.submit(ctx, "returnBook", id)
}

func (c *Console) viewAccount(ctx context.Context) error {
	member, err := c.lib.MemberByAddress(ctx, c.lib.Wallet())
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "ID: %s, Nickname: %s, Role: %d, Status: %d\n",
		member.Id, member.Nickname, member.Role, member.Status)
	return nil
}

// joinLibrary always builds the transaction. It is only signed and sent when
// SubmitJoin is enabled.
func (c *Console) joinLibrary(ctx context.Context) error {
	nickname, err := c.prompt("Enter your nickname: ")
	if err != nil {
		return err
	}
	p, err := c.lib.BuildTransaction(ctx, "joinLibrary", nickname)
	if err != nil {
		return err
	}
	if !c.submitJoin {
		fmt.Fprintf(c.out, "Join transaction built (nonce %d) but not submitted: SubmitJoin is disabled.\n", p.Nonce)
		return nil
	}
	hash, err := c.lib.SignAndSubmit(ctx, p)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Transaction hash: %s\n", hash.Hex())
	return nil
}

// PrintCheckouts lists the books currently checked out by the wallet.
func PrintCheckouts(ctx context.Context, lib Library, out io.Writer) error {
	books, err := lib.CheckedOutBooks(ctx, lib.Wallet())
	if err != nil {
		return err
	}
	for _, b := range books {
		fmt.Fprintf(out, "Title: %s, ISBN: %s, Status: %s\n", b.Title, b.Isbn, b.StatusName())
	}
	return nil
}
