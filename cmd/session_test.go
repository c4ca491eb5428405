package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brettbedarf/chatfs/adapters"
	"github.com/brettbedarf/chatfs/config"
	"github.com/brettbedarf/chatfs/server"
)

func newTestSession(t *testing.T) (*session, *server.ChatFs, *bytes.Buffer) {
	t.Helper()

	storeType := adapters.MemoryAdapterType
	cfg := config.NewConfig(&config.ConfigOverride{StoreType: &storeType})

	var out bytes.Buffer
	sess := newSession(&out)
	cfs, err := server.New(context.Background(), cfg, server.WithChangeNotifier(sess.onChange))
	require.NoError(t, err)
	sess.attach(cfs, cfs.NewInterpreter(sess.interpreterOptions()...))
	return sess, cfs, &out
}

func TestSession_ListFollowsLastChange(t *testing.T) {
	t.Parallel()
	sess, _, _ := newTestSession(t)

	reply, _ := sess.handle("create file /documents/work/plan.txt draft")
	assert.Equal(t, "File `/documents/work/plan.txt` created successfully.", reply)
	assert.Equal(t, "/documents/work", sess.currentPath())

	reply, _ = sess.handle("ls")
	assert.Equal(t, "Contents of `/documents/work`:\n- plan.txt (file)\n- report.docx (file)", reply)
}

func TestSession_ChangeDir(t *testing.T) {
	t.Parallel()
	sess, _, _ := newTestSession(t)

	reply, _ := sess.handle(":cd //documents/")
	assert.Equal(t, "Current directory: `/documents`", reply)
	reply, _ = sess.handle(":pwd")
	assert.Equal(t, "Current directory: `/documents`", reply)

	reply, _ = sess.handle(":cd /readme.txt")
	assert.Equal(t, "Error: `/readme.txt` is not a directory.", reply)
	assert.Equal(t, "/documents", sess.currentPath())

	reply, _ = sess.handle(":cd")
	assert.Equal(t, "Current directory: `/`", reply)
}

func TestSession_OpenAndClose(t *testing.T) {
	t.Parallel()
	sess, _, _ := newTestSession(t)

	reply, _ := sess.handle(":open /readme.txt")
	assert.Equal(t, "Opened `/readme.txt`:\n```\nHello VFS!\n```", reply)
	assert.True(t, sess.isOpen("/readme.txt"))

	reply, _ = sess.handle(":close")
	assert.Equal(t, "Closed `/readme.txt`.", reply)
	reply, _ = sess.handle(":close")
	assert.Equal(t, noFileOpenText, reply)

	reply, _ = sess.handle(":open /documents")
	assert.Equal(t, "Error: Could not open `/documents`. It might not exist or is not a file.", reply)
	reply, _ = sess.handle(":open")
	assert.Equal(t, "Usage: :open <path>", reply)
}

func TestSession_DeletingOpenFileClosesIt(t *testing.T) {
	t.Parallel()
	sess, _, _ := newTestSession(t)

	sess.handle(":open /documents/notes.txt")
	reply, _ := sess.handle("delete /documents/notes.txt")
	assert.Equal(t, "File `/documents/notes.txt` deleted successfully. It was open and has been closed.", reply)
	assert.False(t, sess.isOpen("/documents/notes.txt"))
}

func TestSession_OpenFileSurvivesUnrelatedChanges(t *testing.T) {
	t.Parallel()
	sess, _, _ := newTestSession(t)

	sess.handle(":open /readme.txt")
	sess.handle("mkdir /other")
	assert.True(t, sess.isOpen("/readme.txt"))
}

func TestSession_Suggest(t *testing.T) {
	t.Parallel()
	sess, _, _ := newTestSession(t)

	reply, _ := sess.handle(":files")
	assert.Equal(t, "/documents/notes.txt\n/documents/work/report.docx\n/readme.txt", reply)

	sess.handle(":open /readme.txt")
	reply, _ = sess.handle(":files")
	assert.Equal(t, "/readme.txt\n/documents/notes.txt\n/documents/work/report.docx", reply)

	reply, _ = sess.handle(":files REPORT")
	assert.Equal(t, "/documents/work/report.docx", reply)

	reply, _ = sess.handle(":files nothing-like-this")
	assert.Equal(t, noMatchingFiles, reply)
}

func TestSession_SuggestLimit(t *testing.T) {
	t.Parallel()
	sess, cfs, _ := newTestSession(t)

	for i := range 15 {
		require.NoError(t, cfs.CreateFile("/bulk/f"+string(rune('a'+i)), ""))
	}
	reply, _ := sess.handle(":files /bulk/")
	assert.Len(t, strings.Split(reply, "\n"), maxSuggestions)
}

func TestSession_MetaCommands(t *testing.T) {
	t.Parallel()
	sess, _, _ := newTestSession(t)

	reply, quit := sess.handle(":bogus")
	assert.Equal(t, metaHelpText, reply)
	assert.False(t, quit)

	for _, line := range []string{":quit", ":q", "  :EXIT  "} {
		_, quit = sess.handle(line)
		assert.True(t, quit, line)
	}
}

func TestSession_Run(t *testing.T) {
	t.Parallel()
	sess, _, out := newTestSession(t)

	err := sess.run(context.Background(), strings.NewReader("mkdir /x\n\n:quit\nls\n"))
	require.NoError(t, err)

	got := out.String()
	assert.True(t, strings.HasPrefix(got, welcomeText+"\n"))
	assert.Contains(t, got, "chatfs:/> Directory `/x` created successfully.")
	assert.Contains(t, got, "Please enter a command.")
	assert.NotContains(t, got, "Contents of", "input after :quit is not processed")
}

func TestSession_RunUntilEOF(t *testing.T) {
	t.Parallel()
	sess, _, out := newTestSession(t)

	require.NoError(t, sess.run(context.Background(), strings.NewReader("read file /readme.txt")))
	assert.Contains(t, out.String(), "Content of `/readme.txt`:\n```\nHello VFS!\n```")
}

func TestLoadConfig_FlagsWinOverEnv(t *testing.T) {
	t.Setenv("CHATFS_STORE_TYPE", "redis")
	t.Setenv("CHATFS_SEED_SAMPLES", "false")

	storeType := "memory"
	cfg, err := loadConfig("", &config.ConfigOverride{StoreType: &storeType})
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Store.Type)
	assert.False(t, cfg.SeedSamples)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := loadConfig("/definitely/not/here.yaml", &config.ConfigOverride{})
	assert.Error(t, err)
}
