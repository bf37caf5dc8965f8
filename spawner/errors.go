package spawner

import "fmt"

func paramErr(format string, args ...any) error {
	return fmt.Errorf("memoexec spawner; "+format, args...)
}

func paramErrCaused(err error, format string, args ...any) error {
	return fmt.Errorf(
		"memoexec spawner; "+format+"; %w", append(args, err)...)
}
