package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/teamunity/lms/core/assignment"
	"github.com/teamunity/lms/core/grade"
	"github.com/teamunity/lms/core/module"
	"github.com/teamunity/lms/core/user"
)

// seedUsers are created with their username as password.
var seedUsers = []user.NewUser{
	{Username: "admin", Role: "admin", FirstName: "admin", LastName: "admin", Email: "admin@admin.com"},
	{Username: "teacher", Role: "teacher", FirstName: "teacher", LastName: "teacher", Email: "teacher@teacher.com"},
	{Username: "student", Role: "student", FirstName: "student", LastName: "student", Email: "student@student.com"},
}

// seed fills an empty database with the default accounts, one module, one assignment and a grade.
// It does nothing once the admin account exists.
func (cli *commandLine) seed() error {
	ctx := context.Background()
	stack := cli.stack

	if _, err := stack.UserSvc.GetByUsername(ctx, seedUsers[0].Username); err == nil {
		fmt.Fprintln(cli.out, "Database already seeded")
		return nil
	} else if errors.Cause(err) != user.ErrNotFound {
		return errors.Wrap(err, "finding admin")
	}

	users := make(map[string]user.User, len(seedUsers))
	for _, nu := range seedUsers {
		nu.Password = nu.Username
		usr, err := stack.UserSvc.Create(ctx, nu)
		if err != nil {
			return errors.Wrapf(err, "creating %s", nu.Username)
		}
		users[usr.Username] = usr
	}

	mod, err := stack.ModuleSvc.Create(ctx, users["teacher"], module.NewModule{
		Title:       "Introduction to Go",
		Description: "Types, functions, packages and the standard library.",
	})
	if err != nil {
		return errors.Wrap(err, "creating module")
	}
	asg, err := stack.AssignmentSvc.Create(ctx, assignment.NewAssignment{
		Title:       "Hello, World",
		Description: "Write, build and run your first program.",
		ModuleID:    mod.ID,
		DueDate:     "2030-01-31",
	})
	if err != nil {
		return errors.Wrap(err, "creating assignment")
	}
	score := 85.0
	if _, err = stack.GradeSvc.Create(ctx, grade.NewGrade{
		StudentID:    users["student"].ID,
		AssignmentID: asg.ID,
		Score:        &score,
	}); err != nil {
		return errors.Wrap(err, "creating grade")
	}

	fmt.Fprintln(cli.out, "Database seeded: users admin, teacher and student (password = username)")
	return nil
}
