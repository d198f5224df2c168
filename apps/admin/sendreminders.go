package main

import "fmt"

// sendReminders scans topics and measures and emails the owners of items that
// are due soon or overdue. Intended to run from a daily cron job.
func (cli *commandLine) sendReminders() error {
	count, err := cli.topicSvc.SendReminders()
	if err != nil {
		return err
	}
	fmt.Printf("%d reminder(s) sent\n", count)
	return nil
}
