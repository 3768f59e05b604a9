package main

import (
	"context"
	"fmt"

	"github.com/teamunity/lms/core/user"
)

func (cli *commandLine) addUser(uname, email, role, first, last, pwd string) error {
	usr, err := cli.stack.UserSvc.Create(context.Background(), user.NewUser{
		Username:  uname,
		Password:  pwd,
		Role:      role,
		FirstName: first,
		LastName:  last,
		Email:     email,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, user.CreatedMessage(usr))
	return nil
}

func (cli *commandLine) resetPassword(uname, pwd string) error {
	if err := cli.stack.UserSvc.ResetPassword(context.Background(), uname, pwd); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Password of %s successfully reset\n", uname)
	return nil
}
