package commands

// HelpText is returned by the help command
const HelpText = "Available commands:\n" +
	"- `help`: Shows this help message.\n" +
	"- `create file <path> [content]`: Creates a new file with optional content.\n" +
	"    Example: create file /my_file.txt Hello world\n" +
	"- `write file <path> <content>`: Writes (overwrites) content to a file.\n" +
	"    Example: write file /my_file.txt New content\n" +
	"- `read file <path>`: Displays the content of a file.\n" +
	"    Example: read file /my_file.txt\n" +
	"- `delete file <path>`: Deletes a file.\n" +
	"    Example: delete file /my_file.txt\n" +
	"- `create folder <path>` or `mkdir <path>`: Creates a new directory.\n" +
	"    Example: create folder /my_docs\n" +
	"- `delete folder <path>` or `rmdir <path>`: Deletes an empty directory.\n" +
	"    Example: delete folder /my_docs\n" +
	"- `list files [path]` or `ls [path]`: Lists files and directories. Path is optional, defaults to the current directory.\n" +
	"    Example: ls /documents\n" +
	"    Example: ls"
