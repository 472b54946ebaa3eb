package alloc_test

import (
	"fmt"

	"github.com/vkngwrapper/pagealloc/alloc"
)

// helloWorld writes a greeting into memory from whichever allocator it is handed
func helloWorld(allocator alloc.Allocator) (alloc.MemoryBlock, error) {
	const greeting = "hello world\n"

	block, err := allocator.Allocate(len(greeting) + 1)
	if err != nil {
		return alloc.MemoryBlock{}, err
	}

	copy(block.Bytes(), greeting)
	block.Bytes()[len(greeting)] = 0
	return block, nil
}

func Example() {
	buffer := make([]byte, 1000)
	fixed, err := alloc.NewFixedBufferAllocator(nil, buffer, alloc.CreateOptions{})
	if err != nil {
		panic(err)
	}

	arena, err := alloc.NewArenaAllocator(nil, alloc.CreateOptions{})
	if err != nil {
		panic(err)
	}
	defer arena.Destroy()

	bucket, err := alloc.NewBucketAllocator(nil, alloc.CreateOptions{})
	if err != nil {
		panic(err)
	}

	for _, allocator := range []alloc.Allocator{fixed, arena, bucket} {
		block, err := helloWorld(allocator)
		if err != nil {
			panic(err)
		}

		fmt.Printf("%d %s", block.Size, block.Bytes()[:12])

		err = allocator.Release(block)
		if err != nil {
			panic(err)
		}
	}

	// Output:
	// 16 hello world
	// 16 hello world
	// 16 hello world
}

func ExampleBucketAllocator_ResizeInPlace() {
	bucket, err := alloc.NewBucketAllocator(nil, alloc.CreateOptions{})
	if err != nil {
		panic(err)
	}
	defer bucket.Destroy()

	block, err := bucket.Allocate(20)
	if err != nil {
		panic(err)
	}

	block, ok := bucket.ResizeInPlace(block, 30)
	fmt.Println(ok, block.Size)

	_, ok = bucket.ResizeInPlace(block, 40)
	fmt.Println(ok, block.Size)

	// Output:
	// true 32
	// false 32
}
