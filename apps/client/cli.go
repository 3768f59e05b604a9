package main

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

type cli struct {
	api          *apiClient
	in           *bufio.Reader
	out          io.Writer
	readPassword func() (string, error)
}

var menu = []string{
	"Login to the app",
	"Register a new user",
	"List all current users",
	"Update a user",
	"Create a Module",
	"Create an Assignment",
	"Submit a Grade",
	"View Grades as a Student",
	"Toggle Hacker Mode",
	"Logout",
	"Exit",
}

func (c *cli) printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out, format, args...)
}

func (c *cli) println(args ...interface{}) {
	fmt.Fprintln(c.out, args...)
}

// run shows the menu until the user exits or the input ends.
func (c *cli) run() error {
	c.println("If this is the first time you use this application, you can use the admin credentials")
	c.println("username=admin, password=admin")
	c.println()

	actions := []func() error{
		c.login, c.registerUser, c.listUsers, c.updateUser, c.createModule, c.createAssignment,
		c.submitGrade, c.viewGrades, c.toggleHackerMode, c.logout,
	}
	for {
		c.println("Available actions:")
		for i, label := range menu {
			c.printf("%d. %s\n", i+1, label)
		}

		choice, err := c.promptInt("Please select an action")
		if err != nil {
			return ignoreEOF(err)
		}
		switch {
		case choice == len(menu):
			c.println("Exiting...")
			return nil
		case choice >= 1 && choice < len(menu):
			if err = actions[choice-1](); err != nil {
				if errors.Cause(err) == io.EOF {
					return nil
				}
				c.printf("Error: %v\n\n", err)
			}
		default:
			c.println("Invalid choice. Please select again.")
		}
	}
}

func ignoreEOF(err error) error {
	if errors.Cause(err) == io.EOF {
		return nil
	}
	return err
}

// prompts

func (c *cli) readLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *cli) prompt(label string) (string, error) {
	for {
		c.printf("%s: ", label)
		line, err := c.readLine()
		if err != nil {
			return "", err
		}
		if line = strings.TrimSpace(line); line != "" {
			return line, nil
		}
	}
}

// promptOptional accepts an empty answer.
func (c *cli) promptOptional(label string) (string, error) {
	c.printf("%s []: ", label)
	line, err := c.readLine()
	return strings.TrimSpace(line), err
}

func (c *cli) promptInt(label string) (int, error) {
	for {
		s, err := c.prompt(label)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(s)
		if err == nil {
			return n, nil
		}
		c.printf("Error: '%s' is not a valid integer.\n", s)
	}
}

func (c *cli) promptFloat(label string) (float64, error) {
	for {
		s, err := c.prompt(label)
		if err != nil {
			return 0, err
		}
		f, err := strconv.ParseFloat(s, 64)
		if err == nil {
			return f, nil
		}
		c.printf("Error: '%s' is not a valid float.\n", s)
	}
}

func (c *cli) promptPassword(label string) (string, error) {
	for {
		c.printf("%s: ", label)
		pwd, err := c.readPassword()
		c.println()
		if err != nil {
			return "", err
		}
		if pwd != "" {
			return pwd, nil
		}
	}
}

// printList prints the rows of a list response with line, or the message of an error response.
func (c *cli) printList(resp response, title string, line func(i int, row map[string]interface{}) string) {
	if !resp.IsList {
		c.println(resp.Message)
		return
	}
	c.println()
	c.println(title)
	for i, row := range resp.Rows {
		c.println(line(i, row))
	}
}

func (c *cli) printMessage(resp response) {
	c.println(resp.Message)
	c.println()
}

// actions

func (c *cli) login() error {
	uname, err := c.prompt("Please enter a username")
	if err != nil {
		return err
	}
	pwd, err := c.promptPassword("Please enter a password")
	if err != nil {
		return err
	}
	c.println()

	resp, err := c.api.login(uname, pwd)
	if err != nil {
		return err
	}
	c.printMessage(resp)
	return nil
}

func (c *cli) registerUser() error {
	fields := []struct{ key, label string }{
		{"username", "Please enter a username"},
		{"password", ""},
		{"role", "Please enter a role (Admin, Teacher, Student)"},
		{"first_name", "Please enter your first name"},
		{"last_name", "Please enter your last name"},
		{"email", "Please enter your email"},
	}
	data := make(map[string]string, len(fields))
	for _, f := range fields {
		var (
			v   string
			err error
		)
		if f.key == "password" {
			v, err = c.promptPassword("Please enter a password")
		} else {
			v, err = c.prompt(f.label)
		}
		if err != nil {
			return err
		}
		data[f.key] = v
	}
	c.println()

	resp, err := c.api.do(http.MethodPost, "/users/create", data)
	if err != nil {
		return err
	}
	c.printMessage(resp)
	return nil
}

func (c *cli) listUsers() error {
	resp, err := c.api.do(http.MethodGet, "/users/list", nil)
	if err != nil {
		return err
	}
	c.printList(resp, "Current users in the system:", func(i int, u map[string]interface{}) string {
		return fmt.Sprintf("- User %d. first name: %v, last name: %v, username: %v", i+1, u["first_name"], u["last_name"], u["username"])
	})
	c.println()
	return nil
}

func (c *cli) updateUser() error {
	resp, err := c.api.do(http.MethodGet, "/users/list", nil)
	if err != nil {
		return err
	}
	c.printList(resp, "Current users in the system:", func(_ int, u map[string]interface{}) string {
		return fmt.Sprintf("- User ID %v. first name: %v, last name: %v, username: %v", u["id"], u["first_name"], u["last_name"], u["username"])
	})
	c.println()

	id, err := c.promptInt("Please enter the user ID of the user you want to update")
	if err != nil {
		return err
	}
	fields := []struct{ key, label string }{
		{"username", "Please enter a new username (or press Enter to skip)"},
		{"role", "Please enter a new role (Admin, Teacher, Student, or press Enter to skip)"},
		{"first_name", "Please enter a new first name (or press Enter to skip)"},
		{"last_name", "Please enter a new last name (or press Enter to skip)"},
		{"email", "Please enter a new email (or press Enter to skip)"},
	}
	data := make(map[string]string)
	for _, f := range fields {
		v, err := c.promptOptional(f.label)
		if err != nil {
			return err
		}
		if v != "" {
			data[f.key] = v
		}
	}

	resp, err = c.api.updateUser(id, data)
	if err != nil {
		return err
	}
	c.printMessage(resp)
	return nil
}

func (c *cli) createModule() error {
	title, err := c.prompt("Please enter the module title")
	if err != nil {
		return err
	}
	description, err := c.prompt("Please enter the module description")
	if err != nil {
		return err
	}
	c.println()

	resp, err := c.api.do(http.MethodPost, "/modules/create", map[string]string{"title": title, "description": description})
	if err != nil {
		return err
	}
	c.printMessage(resp)
	return nil
}

func (c *cli) createAssignment() error {
	c.println("List of available modules to add an assignment to")
	resp, err := c.api.do(http.MethodGet, "/modules/list", nil)
	if err != nil {
		return err
	}
	c.printList(resp, "Current modules in the system:", func(_ int, m map[string]interface{}) string {
		return fmt.Sprintf("- Module ID: %v. Title: %v", m["id"], m["title"])
	})
	c.println()

	title, err := c.prompt("Please enter the assignment title")
	if err != nil {
		return err
	}
	description, err := c.prompt("Please enter the assignment description")
	if err != nil {
		return err
	}
	moduleID, err := c.promptInt("Please enter the module ID")
	if err != nil {
		return err
	}
	dueDate, err := c.prompt("Please enter the due date (YYYY-MM-DD)")
	if err != nil {
		return err
	}
	c.println()

	resp, err = c.api.do(http.MethodPost, "/assignments/create", map[string]interface{}{
		"title": title, "description": description, "module_id": moduleID, "due_date": dueDate,
	})
	if err != nil {
		return err
	}
	c.printMessage(resp)
	return nil
}

func (c *cli) submitGrade() error {
	c.println("List of available students")
	resp, err := c.api.do(http.MethodGet, "/users/list_students", nil)
	if err != nil {
		return err
	}
	c.printList(resp, "Current students in the system:", func(_ int, s map[string]interface{}) string {
		return fmt.Sprintf("- Student ID: %v. Name: %v - %v", s["id"], s["first_name"], s["last_name"])
	})

	resp, err = c.api.do(http.MethodGet, "/assignments/list", nil)
	if err != nil {
		return err
	}
	c.printList(resp, "Current assignments in the system:", func(_ int, a map[string]interface{}) string {
		return fmt.Sprintf("- Assignment ID: %v. Title: %v", a["id"], a["title"])
	})

	studentID, err := c.promptInt("Please enter the student ID")
	if err != nil {
		return err
	}
	assignmentID, err := c.promptInt("Please enter the assignment ID")
	if err != nil {
		return err
	}
	score, err := c.promptFloat("Please enter the score")
	if err != nil {
		return err
	}
	c.println()

	resp, err = c.api.do(http.MethodPost, "/grades/create", map[string]interface{}{
		"student_id": studentID, "assignment_id": assignmentID, "score": score,
	})
	if err != nil {
		return err
	}
	c.printMessage(resp)
	return nil
}

func (c *cli) viewGrades() error {
	resp, err := c.api.do(http.MethodGet, "/grades/view", nil)
	if err != nil {
		return err
	}
	c.printList(resp, "Your grades:", func(_ int, g map[string]interface{}) string {
		score, _ := g["score"].(float64)
		return fmt.Sprintf("- Assignment ID: %v, Score: %d/100", g["assignment_id"], int(score))
	})
	c.println()
	return nil
}

func (c *cli) toggleHackerMode() error {
	c.println("Toggle Hacker Mode")
	status, err := c.promptInt("Enter 1 to turn ON or 0 to turn OFF")
	if err != nil {
		return err
	}
	if status != 0 && status != 1 {
		c.println("Invalid input. Please enter 1 or 0.")
		return nil
	}

	resp, err := c.api.do(http.MethodPost, "/feature_switch/hacker_mode", map[string]int{"active": status})
	if err != nil {
		return err
	}
	c.printMessage(resp)
	return nil
}

func (c *cli) logout() error {
	c.println()
	resp, err := c.api.logout()
	if err != nil {
		return err
	}
	c.printMessage(resp)
	return nil
}
