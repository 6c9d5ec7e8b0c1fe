package main

import (
	"context"
	"fmt"

	"github.com/trezcool/edusite/core/notification"
)

func (cli *commandLine) notify(req notification.Request) error {
	res, err := cli.notifier.NotifyStudent(context.Background(), req)
	if err != nil {
		return cli.describe(err)
	}
	fmt.Fprintf(cli.out, "sent (%d): %s\n", res.StatusCode, res.Body)
	return nil
}
