// Package console is the interactive, menu-driven front end for student
// records. It reads commands line by line and prints results, so it can
// be driven by a terminal or by a script piped into stdin.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aanand-mishra/student-manager/internal/service"
	"github.com/aanand-mishra/student-manager/internal/storage"
	"github.com/aanand-mishra/student-manager/internal/types"
	"github.com/aanand-mishra/student-manager/internal/validate"
)

// ConfirmWord must be typed exactly to delete every record.
const ConfirmWord = "YES"

// Service is the subset of service.Students the console drives.
type Service interface {
	Add(ctx context.Context, st types.Student) error
	Get(ctx context.Context, id int) (*types.Student, error)
	GetByEmail(ctx context.Context, email string) (*types.Student, error)
	List(ctx context.Context) ([]types.Student, error)
	Search(ctx context.Context, query string) ([]types.Student, error)
	FilterByAge(ctx context.Context, age int) ([]types.Student, error)
	Update(ctx context.Context, id int, patch types.StudentPatch) (types.Student, error)
	Delete(ctx context.Context, id int) (bool, error)
	DeleteAll(ctx context.Context) (int64, error)
}

const menu = `
===== Student Manager =====
1. Show all students
2. Find student by ID
3. Add student
4. Update student
5. Delete student
6. Search by name or surname
7. Find student by email
8. Filter by age
9. Delete all students
0. Exit`

// Console runs the menu loop.
type Console struct {
	svc Service
	in  *bufio.Scanner
	out io.Writer
}

// New returns a Console reading answers from in and printing to out.
func New(svc Service, in io.Reader, out io.Writer) *Console {
	return &Console{svc: svc, in: bufio.NewScanner(in), out: out}
}

var (
	// errEOF ends the loop when input runs out mid-prompt.
	errEOF = errors.New("end of input")

	// errInput marks failures reading the input itself. A failed
	// scanner never recovers, so Run stops on these.
	errInput = errors.New("read input")
)

// inputErr maps a line error to what Run returns: nil at end of input.
func inputErr(err error) error {
	if errors.Is(err, errEOF) {
		return nil
	}
	return err
}

// Run shows the menu until the user picks 0, input ends, or ctx is done.
// An error reading input (a line longer than the scanner buffer, a
// closed terminal) stops the loop and is returned.
func (c *Console) Run(ctx context.Context) error {
	actions := map[string]func(context.Context) error{
		"1": c.list,
		"2": c.findByID,
		"3": c.add,
		"4": c.update,
		"5": c.remove,
		"6": c.search,
		"7": c.findByEmail,
		"8": c.filterByAge,
		"9": c.removeAll,
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		c.println(menu)
		choice, err := c.line("Choose an option: ")
		if err != nil {
			return inputErr(err)
		}

		if choice == "0" {
			c.println("Goodbye!")
			return nil
		}

		action, ok := actions[choice]
		if !ok {
			c.println("Unknown option, try again.")
			continue
		}

		if err := action(ctx); err != nil {
			if errors.Is(err, errInput) {
				return inputErr(err)
			}
			c.println(describe(err))
		}
	}
}

func (c *Console) list(ctx context.Context) error {
	students, err := c.svc.List(ctx)
	if err != nil {
		return err
	}
	c.printAll(students, "No students yet.")
	return nil
}

func (c *Console) findByID(ctx context.Context) error {
	id, err := c.number("Student ID: ")
	if err != nil {
		return err
	}

	st, err := c.svc.Get(ctx, id)
	if err != nil {
		return err
	}
	c.printOne(st)
	return nil
}

func (c *Console) findByEmail(ctx context.Context) error {
	email, err := c.line("Email: ")
	if err != nil {
		return err
	}

	st, err := c.svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	c.printOne(st)
	return nil
}

func (c *Console) add(ctx context.Context) error {
	var (
		st  types.Student
		err error
	)

	if st.ID, err = c.number("ID: "); err != nil {
		return err
	}
	if st.Name, err = c.line("Name: "); err != nil {
		return err
	}
	if st.Surname, err = c.line("Surname: "); err != nil {
		return err
	}
	if st.Age, err = c.number("Age: "); err != nil {
		return err
	}
	phone, err := c.line("Phone (optional): ")
	if err != nil {
		return err
	}
	if phone != "" {
		st.Phone = &phone
	}
	if st.Email, err = c.line("Email: "); err != nil {
		return err
	}

	if err := c.svc.Add(ctx, st); err != nil {
		return err
	}
	c.println("Student added.")
	return nil
}

// update asks for every field; an empty answer keeps the current value
// and "-" clears the phone.
func (c *Console) update(ctx context.Context) error {
	id, err := c.number("Student ID: ")
	if err != nil {
		return err
	}

	cur, err := c.svc.Get(ctx, id)
	if err != nil {
		return err
	}
	if cur == nil {
		c.println("Student not found.")
		return nil
	}
	c.println("Current: " + cur.String())
	c.println("Press Enter to keep a value.")

	var patch types.StudentPatch

	if patch.Name, err = c.optional("Name: "); err != nil {
		return err
	}
	if patch.Surname, err = c.optional("Surname: "); err != nil {
		return err
	}
	if patch.Age, err = c.optionalNumber("Age: "); err != nil {
		return err
	}

	phone, err := c.line("Phone (- to clear): ")
	if err != nil {
		return err
	}
	switch phone {
	case "":
		patch.Phone = types.PhoneKeep
	case "-":
		patch.Phone = types.PhoneClear
	default:
		patch.Phone = types.PhoneSet
		patch.PhoneValue = phone
	}

	if patch.Email, err = c.optional("Email: "); err != nil {
		return err
	}

	if patch.Empty() {
		c.println("Nothing to change.")
		return nil
	}

	updated, err := c.svc.Update(ctx, id, patch)
	if err != nil {
		return err
	}
	c.println("Student updated: " + updated.String())
	return nil
}

func (c *Console) remove(ctx context.Context) error {
	id, err := c.number("Student ID: ")
	if err != nil {
		return err
	}

	ok, err := c.svc.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		c.println("Student not found.")
		return nil
	}
	c.println("Student deleted.")
	return nil
}

func (c *Console) search(ctx context.Context) error {
	q, err := c.line("Name or surname contains: ")
	if err != nil {
		return err
	}

	students, err := c.svc.Search(ctx, q)
	if err != nil {
		return err
	}
	c.printAll(students, "No matches.")
	return nil
}

func (c *Console) filterByAge(ctx context.Context) error {
	age, err := c.number("Age: ")
	if err != nil {
		return err
	}

	students, err := c.svc.FilterByAge(ctx, age)
	if err != nil {
		return err
	}
	c.printAll(students, "No students of that age.")
	return nil
}

func (c *Console) removeAll(ctx context.Context) error {
	answer, err := c.line(fmt.Sprintf("This deletes every student. Type %s to confirm: ", ConfirmWord))
	if err != nil {
		return err
	}
	if answer != ConfirmWord {
		c.println("Cancelled.")
		return nil
	}

	n, err := c.svc.DeleteAll(ctx)
	if err != nil {
		return err
	}
	c.println(fmt.Sprintf("Deleted %d students.", n))
	return nil
}

// line prints prompt and returns the next trimmed input line.
func (c *Console) line(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", fmt.Errorf("%w: %w", errInput, err)
		}
		return "", fmt.Errorf("%w: %w", errInput, errEOF)
	}
	return strings.TrimSpace(c.in.Text()), nil
}

// number re-prompts until the input parses as an integer.
func (c *Console) number(prompt string) (int, error) {
	for {
		s, err := c.line(prompt)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(s)
		if err == nil {
			return n, nil
		}
		c.println("Please enter a whole number.")
	}
}

func (c *Console) optional(prompt string) (*string, error) {
	s, err := c.line(prompt)
	if err != nil || s == "" {
		return nil, err
	}
	return &s, nil
}

func (c *Console) optionalNumber(prompt string) (*int, error) {
	for {
		s, err := c.line(prompt)
		if err != nil || s == "" {
			return nil, err
		}
		n, err := strconv.Atoi(s)
		if err == nil {
			return &n, nil
		}
		c.println("Please enter a whole number.")
	}
}

func (c *Console) printOne(st *types.Student) {
	if st == nil {
		c.println("Student not found.")
		return
	}
	c.println(st.String())
}

func (c *Console) printAll(students []types.Student, empty string) {
	if len(students) == 0 {
		c.println(empty)
		return
	}
	for _, st := range students {
		c.println(st.String())
	}
}

func (c *Console) println(s string) {
	fmt.Fprintln(c.out, s)
}

func describe(err error) string {
	switch {
	case errors.Is(err, validate.ErrInvalid), errors.Is(err, service.ErrEmptyQuery):
		return "Invalid input: " + err.Error()
	case errors.Is(err, storage.ErrConflict):
		return "Conflict: " + err.Error()
	case errors.Is(err, service.ErrNotFound):
		return "Student not found."
	default:
		return "Storage error: " + err.Error()
	}
}
