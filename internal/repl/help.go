package repl

const helpText = `# ParenTime

## Children

| Command | Description |
|---|---|
| /children | List children |
| /add-child <first> [last] <YYYY-MM-DD> | Add a child |
| /child [n] | Select the current child |
| /rename-child <first> [last] | Rename the current child |
| /delete-child <n> | Delete a child and all of their reminders |

## Suggestions and events

| Command | Description |
|---|---|
| /templates | Show the reminder catalog |
| /suggestions | Suggestions for the current child |
| /ignore <template> | Hide a suggestion |
| /restore <template> | Show a hidden suggestion again |
| /activate-suggestion <template> | Schedule the next occurrence as an active reminder |
| /upcoming [active] | Next event of each series within the horizon |
| /overdue | Past events not yet completed |

## Reminders

| Command | Description |
|---|---|
| /reminders [all or category] | List reminders of the current child |
| /add-reminder <YYYY-MM-DD> <title> | Add a custom reminder |
| /activate <n> | Turn on notifications for a reminder |
| /deactivate <n> | Turn off notifications |
| /complete <n> | Mark a reminder done |
| /delete <n> | Delete a reminder |

Reminder numbers refer to the last list shown.

## Overview

| Command | Description |
|---|---|
| /dashboard | What needs attention now and next |
| /notifications | Scheduled notifications |
| /export <file.xlsx> | Write every child and reminder to a workbook |
| /quit | Exit |
`
